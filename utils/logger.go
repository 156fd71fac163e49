package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// InfoLogger logs informational messages
	InfoLogger *logrus.Logger
	// ErrorLogger logs error messages
	ErrorLogger *logrus.Logger
	// DebugLogger logs debug messages
	DebugLogger *logrus.Logger
)

// InitLogger initializes the loggers. Each level writes both to its own
// dated file under logs/ and to the process output.
func InitLogger() error {
	logsDir := "logs"
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %v", err)
	}

	timestamp := time.Now().Format("2006-01-02")
	open := func(name string) (*os.File, error) {
		return os.OpenFile(
			filepath.Join(logsDir, fmt.Sprintf("%s-%s.log", name, timestamp)),
			os.O_APPEND|os.O_CREATE|os.O_WRONLY,
			0644,
		)
	}

	infoFile, err := open("info")
	if err != nil {
		return fmt.Errorf("failed to open info log file: %v", err)
	}
	errorFile, err := open("error")
	if err != nil {
		return fmt.Errorf("failed to open error log file: %v", err)
	}
	debugFile, err := open("debug")
	if err != nil {
		return fmt.Errorf("failed to open debug log file: %v", err)
	}

	formatter := &logrus.TextFormatter{FullTimestamp: true}

	InfoLogger = logrus.New()
	InfoLogger.SetOutput(io.MultiWriter(infoFile, os.Stdout))
	InfoLogger.SetFormatter(formatter)
	InfoLogger.SetLevel(logrus.InfoLevel)

	ErrorLogger = logrus.New()
	ErrorLogger.SetOutput(io.MultiWriter(errorFile, os.Stderr))
	ErrorLogger.SetFormatter(formatter)
	ErrorLogger.SetLevel(logrus.ErrorLevel)

	DebugLogger = logrus.New()
	DebugLogger.SetOutput(debugFile)
	DebugLogger.SetFormatter(formatter)
	DebugLogger.SetLevel(logrus.DebugLevel)

	return nil
}

// LogInfo logs an informational message
func LogInfo(format string, v ...interface{}) {
	if InfoLogger != nil {
		InfoLogger.Infof(format, v...)
	}
}

// LogError logs an error message
func LogError(format string, v ...interface{}) {
	if ErrorLogger != nil {
		ErrorLogger.Errorf(format, v...)
	}
}

// LogDebug logs a debug message
func LogDebug(format string, v ...interface{}) {
	if DebugLogger != nil {
		DebugLogger.Debugf(format, v...)
	}
}

// LogRequest logs HTTP request details
func LogRequest(method, path, ip string, status int, duration time.Duration) {
	LogInfo("Request: %s %s from %s - Status: %d - Duration: %v", method, path, ip, status, duration)
}
