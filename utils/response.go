package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response represents a standard API response
type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Code    string      `json:"code,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// Stable error codes carried alongside the HTTP status so clients can
// branch without parsing messages.
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeNotFound           = "NOT_FOUND"
	CodeSlotTaken          = "SLOT_TAKEN"
	CodeAlreadyIssued      = "COUPON_ALREADY_ISSUED"
	CodeCouponNotAvailable = "COUPON_NOT_AVAILABLE"
	CodeCouponExpired      = "COUPON_EXPIRED"
	CodeAlreadyCanceled    = "ALREADY_CANCELED"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeAccountLocked      = "ACCOUNT_LOCKED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInternal           = "INTERNAL_ERROR"
)

// Success sends a success response
func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Created sends a 201 response for newly created resources
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error sends an error response with the given status and code
func Error(c *gin.Context, statusCode int, message string, code string) {
	c.JSON(statusCode, Response{
		Status:  "error",
		Message: message,
		Code:    code,
	})
}

// BadRequest sends a 400 error response
func BadRequest(c *gin.Context, message string, code string) {
	if code == "" {
		code = CodeValidation
	}
	Error(c, http.StatusBadRequest, message, code)
}

// Unauthorized sends a 401 error response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, CodeUnauthorized)
}

// Forbidden sends a 403 error response
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, message, CodeForbidden)
}

// NotFound sends a 404 error response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, CodeNotFound)
}

// Conflict sends a 409 error response
func Conflict(c *gin.Context, message string, code string) {
	Error(c, http.StatusConflict, message, code)
}

// Locked sends a 401 with a stable code so clients can tell a locked
// account apart from bad credentials.
func Locked(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, CodeAccountLocked)
}

// InternalServerError sends a 500 error response
func InternalServerError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message, CodeInternal)
}
