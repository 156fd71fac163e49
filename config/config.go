package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig is the loaded configuration, set by LoadConfig.
var AppConfig *Config

// Config holds all configuration for the application
type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	Port       string
	Env        string

	// Lockout guard tuning
	LockoutMaxAttempts int
	LockoutWindow      time.Duration

	// Hour of day (local time) at which the birthday sweep runs
	BirthdaySweepHour int

	// Lifetime of password-reset tokens in the Redis store
	ResetTokenTTL time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading .env file: %v", err)
	}

	config := &Config{
		DBHost:             os.Getenv("DB_HOST"),
		DBPort:             os.Getenv("DB_PORT"),
		DBUser:             os.Getenv("DB_USER"),
		DBPassword:         os.Getenv("DB_PASSWORD"),
		DBName:             os.Getenv("DB_NAME"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		Port:               os.Getenv("PORT"),
		Env:                os.Getenv("ENV"),
		LockoutMaxAttempts: envInt("LOCKOUT_MAX_ATTEMPTS", 5),
		LockoutWindow:      envDuration("LOCKOUT_WINDOW", 15*time.Minute),
		BirthdaySweepHour:  envInt("BIRTHDAY_SWEEP_HOUR", 9),
		ResetTokenTTL:      envDuration("RESET_TOKEN_TTL", 30*time.Minute),
	}

	AppConfig = config
	return config, nil
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
