package todoclient

import (
	"errors"
	"fmt"
)

// Sentinel errors for connection-related issues.
var (
	// ErrServerNotRunning indicates the server is not reachable.
	ErrServerNotRunning = errors.New("server is not running or unreachable")
	// ErrServerUnhealthy indicates the health check failed.
	ErrServerUnhealthy = errors.New("server health check failed")
)

// ErrorCode represents a domain error code from the API.
type ErrorCode string

const (
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeTodoNotFound       ErrorCode = "TODO_NOT_FOUND"
	ErrCodeUsernameTaken      ErrorCode = "USERNAME_TAKEN"
	ErrCodeEmailTaken         ErrorCode = "EMAIL_TAKEN"
	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

// Error represents an error response from the todoapp API. Message is the
// server's human-readable text.
type Error struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Fields     map[string]string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// apiError is the JSON structure for an API error.
type apiError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// IsNotFound returns true if the todo or route does not exist.
func IsNotFound(err error) bool {
	return hasErrorCode(err, ErrCodeTodoNotFound) || hasErrorCode(err, ErrCodeNotFound)
}

// IsUnauthorized returns true if the request lacked a valid token.
func IsUnauthorized(err error) bool {
	return hasErrorCode(err, ErrCodeUnauthorized)
}

// IsValidation returns true if the request body failed validation.
func IsValidation(err error) bool {
	return hasErrorCode(err, ErrCodeValidationFailed)
}

// IsInvalidCredentials returns true if a login was rejected.
func IsInvalidCredentials(err error) bool {
	return hasErrorCode(err, ErrCodeInvalidCredentials)
}

// IsConflict returns true if a registration collided with an existing
// username or email.
func IsConflict(err error) bool {
	return hasErrorCode(err, ErrCodeUsernameTaken) || hasErrorCode(err, ErrCodeEmailTaken)
}

// IsServerNotRunning returns true if the error indicates the server is not running.
func IsServerNotRunning(err error) bool {
	return errors.Is(err, ErrServerNotRunning)
}

// MessageOf returns the API message carried by err, or "" when err is not
// an API error.
func MessageOf(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// hasErrorCode checks if the error has the given error code.
func hasErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
