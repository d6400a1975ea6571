package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a unique error code
type ErrorCode string

// Error codes, one per failure class exposed to clients
const (
	// Authentication Errors (1xxx)
	ErrCodeAuthenticationFailed ErrorCode = "AUTH_1001"
	ErrCodeMissingCredential    ErrorCode = "AUTH_1002"
	ErrCodeInvalidCredential    ErrorCode = "AUTH_1003"

	// Validation Errors (2xxx)
	ErrCodeInvalidInput ErrorCode = "VALID_2001"

	// Rate Limiting Errors (3xxx)
	ErrCodeRateLimited ErrorCode = "RATE_3001"

	// Resource Errors (4xxx)
	ErrCodeNotFound ErrorCode = "RES_4001"

	// Database Errors (5xxx)
	ErrCodeStoreFailure ErrorCode = "DB_5001"

	// Server Errors (6xxx)
	ErrCodeInternal ErrorCode = "SERVER_6001"

	// Security Errors (7xxx)
	ErrCodeForbidden ErrorCode = "SEC_7001"
)

var defaultStatus = map[ErrorCode]int{
	ErrCodeAuthenticationFailed: http.StatusUnauthorized,
	ErrCodeMissingCredential:    http.StatusUnauthorized,
	ErrCodeInvalidCredential:    http.StatusUnauthorized,
	ErrCodeInvalidInput:         http.StatusBadRequest,
	ErrCodeRateLimited:          http.StatusTooManyRequests,
	ErrCodeNotFound:             http.StatusNotFound,
	ErrCodeStoreFailure:         http.StatusInternalServerError,
	ErrCodeInternal:             http.StatusInternalServerError,
	ErrCodeForbidden:            http.StatusForbidden,
}

// AppError represents a structured application error. Message is safe to show
// to clients; Details and Cause are for logs only.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"-"`
	Cause   error     `json:"-"`
	status  int
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on code so callers can compare against the constructors' output.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// HTTPStatus is the status a handler responds with for this error.
func (e *AppError) HTTPStatus() int {
	if e.status != 0 {
		return e.status
	}
	if s, ok := defaultStatus[e.Code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// WithStatus returns a copy answering with a different HTTP status.
func (e *AppError) WithStatus(status int) *AppError {
	c := *e
	c.status = status
	return &c
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message string, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// Authentication errors

// AuthenticationFailed is returned for both an unknown email and a wrong
// password so the response does not reveal which check failed.
func AuthenticationFailed() *AppError {
	return NewAppError(ErrCodeAuthenticationFailed, "Invalid email or password", "", nil)
}

func MissingCredential(message string) *AppError {
	return NewAppError(ErrCodeMissingCredential, message, "", nil)
}

// MissingSessionCookie is MissingCredential on the cookie endpoints, where an
// absent refresh cookie is a client error rather than an auth failure.
func MissingSessionCookie(message string) *AppError {
	return MissingCredential(message).WithStatus(http.StatusBadRequest)
}

func InvalidCredential(message string, cause error) *AppError {
	return NewAppError(ErrCodeInvalidCredential, message, "", cause)
}

func Forbidden(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, "", nil)
}

// Validation errors
func InvalidInput(message string) *AppError {
	return NewAppError(ErrCodeInvalidInput, message, "", nil)
}

func MissingField(field string) *AppError {
	return NewAppError(ErrCodeInvalidInput, fmt.Sprintf("%s is required", field), "", nil)
}

// Rate limiting errors
func RateLimited(key string) *AppError {
	return NewAppError(ErrCodeRateLimited, "Too many requests. Please try again later.", fmt.Sprintf("Key: %s", key), nil)
}

// Resource errors
func NotFound(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, "", nil)
}

// Database errors
func StoreFailure(operation string, cause error) *AppError {
	return NewAppError(ErrCodeStoreFailure, "Internal server error", fmt.Sprintf("Operation: %s", operation), cause)
}

// Server errors
func Internal(details string, cause error) *AppError {
	return NewAppError(ErrCodeInternal, "Internal server error", details, cause)
}

// From converts any error into an AppError. Errors that are not already
// classified become InternalError.
func From(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("unclassified error", err)
}

// CodeOf returns the error code of err, or ErrCodeInternal when unclassified.
func CodeOf(err error) ErrorCode {
	return From(err).Code
}
