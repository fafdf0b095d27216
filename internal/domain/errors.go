package domain

import "fmt"

// ErrorCode represents a domain error code.
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

// DomainError represents an error in the domain layer.
// Fields carries per-field validation messages and is nil otherwise.
type DomainError struct {
	Code    ErrorCode
	Message string
	Fields  map[string]string
	cause   error
}

func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// NewTodoNotFoundError creates a todo not found error.
func NewTodoNotFoundError(id int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeTodoNotFound,
		Message: fmt.Sprintf("Todo %d not found", id),
	}
}

// NewNotFoundError is returned for paths that match no resource.
func NewNotFoundError() *DomainError {
	return &DomainError{
		Code:    ErrCodeNotFound,
		Message: "Resource not found",
	}
}

// NewUsernameTakenError creates a duplicate username error.
func NewUsernameTakenError() *DomainError {
	return &DomainError{
		Code:    ErrCodeUsernameTaken,
		Message: "Username is already taken",
	}
}

// NewEmailTakenError creates a duplicate email error.
func NewEmailTakenError() *DomainError {
	return &DomainError{
		Code:    ErrCodeEmailTaken,
		Message: "Email is already registered",
	}
}

// NewInvalidCredentialsError is returned for both unknown users and wrong
// passwords so callers cannot tell which one failed.
func NewInvalidCredentialsError() *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCredentials,
		Message: "Invalid username or password",
	}
}

// NewUnauthorizedError creates an authentication required error.
func NewUnauthorizedError() *DomainError {
	return &DomainError{
		Code:    ErrCodeUnauthorized,
		Message: "Authentication required",
	}
}

// NewValidationError creates a validation error with per-field messages.
func NewValidationError(fields map[string]string) *DomainError {
	return &DomainError{
		Code:    ErrCodeValidationFailed,
		Message: "Invalid input",
		Fields:  fields,
	}
}

// NewInternalError creates an internal error. The cause is kept for logging
// and never exposed to clients.
func NewInternalError(err error) *DomainError {
	return &DomainError{
		Code:    ErrCodeInternalError,
		Message: "An internal error occurred",
		cause:   err,
	}
}
