package errors

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var debugMode atomic.Bool

// SetDebug toggles whether the underlying error text is included in
// responses. It must stay off in production.
func SetDebug(enabled bool) {
	debugMode.Store(enabled)
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Error   string `json:"error,omitempty"`
}

// RespondWithError writes the envelope and aborts the handler chain.
// cause is only rendered in debug mode.
func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string, cause ...error) {
	resp := ErrorResponse{
		Success: false,
		Message: message,
		Code:    errorCode,
	}
	if debugMode.Load() && len(cause) > 0 && cause[0] != nil {
		resp.Error = cause[0].Error()
	}
	c.AbortWithStatusJSON(statusCode, resp)
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Forbidden"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	RespondWithError(c, http.StatusTooManyRequests, RateLimitExceeded, message)
}

// InternalError hides the cause from the client unless debug mode is on.
func InternalError(c *gin.Context, message string, cause error) {
	if message == "" {
		message = "Server error"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message, cause)
}

// ValidationError reports per-field binding failures.
type ValidationError struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, ValidationError{
		Success: false,
		Message: "Invalid input",
		Code:    ValidationInvalidInput,
		Fields:  fields,
	})
}
