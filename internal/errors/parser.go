package errors

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ErrorInfo is the client-facing translation of a persistence error.
type ErrorInfo struct {
	Status  int
	Code    string
	Message string
}

// ParseError translates gorm and SQL driver failures into a status, code and
// message that are safe to show to a client. resource names the entity the
// caller was working on ("review", "audit log", ...).
func ParseError(err error, resource string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: "Server error"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Status: http.StatusNotFound, Code: notFoundCode(resource), Message: notFoundMessage(resource)}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorInfo{Status: http.StatusServiceUnavailable, Code: InternalDatabaseError, Message: "Request was cancelled"}
	}

	errLower := strings.ToLower(err.Error())

	// PostgreSQL 23505 / SQLite "UNIQUE constraint failed"
	if strings.Contains(errLower, "duplicate key") || strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower)
	}

	// PostgreSQL 23503 / SQLite "FOREIGN KEY constraint failed"
	if strings.Contains(errLower, "foreign key constraint") {
		return ErrorInfo{Status: http.StatusBadRequest, Code: ResourceNotFound, Message: "Referenced record does not exist"}
	}

	// PostgreSQL 23502 / SQLite "NOT NULL constraint failed"
	if strings.Contains(errLower, "not-null constraint") || strings.Contains(errLower, "not null constraint") {
		return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationRequired, Message: "A required field is missing"}
	}

	// PostgreSQL 23514 / SQLite "CHECK constraint failed"
	if strings.Contains(errLower, "check constraint") {
		return parseCheckConstraintError(errLower)
	}

	return ErrorInfo{Status: http.StatusInternalServerError, Code: InternalServerError, Message: defaultMessage(resource)}
}

func parseDuplicateKeyError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "email"):
		return ErrorInfo{Status: http.StatusConflict, Code: AuthEmailAlreadyExists, Message: "Email is already registered"}
	case strings.Contains(errLower, "helpful_votes"):
		return ErrorInfo{Status: http.StatusConflict, Code: ResourceConflict, Message: "Vote already recorded"}
	}
	return ErrorInfo{Status: http.StatusConflict, Code: ResourceAlreadyExists, Message: "Record already exists"}
}

func parseCheckConstraintError(errLower string) ErrorInfo {
	switch {
	case strings.Contains(errLower, "rating"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ReviewInvalidRating, Message: "Rating must be between 1 and 5"}
	case strings.Contains(errLower, "vote"):
		return ErrorInfo{Status: http.StatusBadRequest, Code: ReviewInvalidVote, Message: "Vote must be up or down"}
	}
	return ErrorInfo{Status: http.StatusBadRequest, Code: ValidationInvalidInput, Message: "Invalid value"}
}

func notFoundCode(resource string) string {
	switch {
	case strings.Contains(resource, "audit"):
		return AuditLogNotFound
	case strings.Contains(resource, "review"):
		return ReviewNotFound
	}
	return ResourceNotFound
}

func notFoundMessage(resource string) string {
	switch {
	case strings.Contains(resource, "audit"):
		return "Audit log not found"
	case strings.Contains(resource, "review"):
		return "Review not found"
	case strings.Contains(resource, "user"):
		return "User not found"
	}
	return "Not found"
}

func defaultMessage(resource string) string {
	if resource == "" {
		return "Server error"
	}
	return "Failed to process " + resource
}

// ParseAndRespond writes the translated error; cause is attached in debug mode.
func ParseAndRespond(c *gin.Context, err error, resource string) {
	info := ParseError(err, resource)
	RespondWithError(c, info.Status, info.Code, info.Message, err)
}
