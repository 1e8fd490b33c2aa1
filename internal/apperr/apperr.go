// Package apperr defines the typed domain errors raised by services and
// repositories and mapped to HTTP statuses by the error handler middleware.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Common error codes
const (
	CodeValidation   = "VALIDATION_FAILED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

// Error is a domain error carrying the HTTP status it maps to and a
// user-safe message. Internal storage errors are never surfaced verbatim;
// they are wrapped and kept for logs only.
type Error struct {
	Code       string
	Message    string
	StatusCode int
	Details    map[string]interface{}
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// NewValidation reports bad or missing input (422).
func NewValidation(message string, details map[string]interface{}) *Error {
	return &Error{Code: CodeValidation, Message: message, StatusCode: http.StatusUnprocessableEntity, Details: details}
}

// NewNotFound reports an absent entity (404).
func NewNotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s not found", resource), StatusCode: http.StatusNotFound}
}

// NewConflict reports a uniqueness or state conflict (409).
func NewConflict(message string, details map[string]interface{}) *Error {
	return &Error{Code: CodeConflict, Message: message, StatusCode: http.StatusConflict, Details: details}
}

// NewUnauthorized reports a failed login or session (401).
func NewUnauthorized(message string) *Error {
	return &Error{Code: CodeUnauthorized, Message: message, StatusCode: http.StatusUnauthorized}
}

// NewForbidden reports an authenticated subject lacking permission (403).
func NewForbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message, StatusCode: http.StatusForbidden}
}

// NewInternal wraps an unexpected storage or runtime failure (500). The
// cause stays attached for logging but the client only sees the message.
func NewInternal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, StatusCode: http.StatusInternalServerError, cause: cause}
}

// Is reports whether err is an *Error with the given code.
func Is(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// FromStorage maps raw storage errors to domain errors: record-not-found
// becomes NotFound, unique-constraint violations (check-then-write races)
// become retryable Conflicts, everything else is Internal.
func FromStorage(err error, resource string) *Error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFound(resource)
	}
	if IsUniqueViolation(err) {
		return NewConflict(fmt.Sprintf("%s already exists", resource), nil)
	}
	return NewInternal("unexpected storage failure", err)
}

// IsUniqueViolation detects unique-constraint errors from postgres (SQLSTATE
// 23505) and sqlite (used by the test suites) without importing either driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
