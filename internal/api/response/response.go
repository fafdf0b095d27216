package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/todoapp/todoapp/internal/domain"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// MessageResponse is a body carrying only a human-readable message.
type MessageResponse struct {
	Message string `json:"message"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends an error response based on the domain error. Errors that are
// not domain errors become INTERNAL_ERROR.
func Error(w http.ResponseWriter, err error) {
	var domainErr *domain.DomainError
	if !errors.As(err, &domainErr) {
		domainErr = domain.NewInternalError(err)
	}

	JSON(w, StatusFor(domainErr.Code), ErrorResponse{
		Code:    string(domainErr.Code),
		Message: domainErr.Message,
		Errors:  domainErr.Fields,
	})
}

// Created sends a 201 Created response with JSON body.
func Created(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusCreated, data)
}

// OK sends a 200 OK response with JSON body.
func OK(w http.ResponseWriter, data interface{}) {
	JSON(w, http.StatusOK, data)
}

// Message sends a 200 OK response with a message body.
func Message(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusOK, MessageResponse{Message: msg})
}

// StatusFor maps a domain error code to its HTTP status.
func StatusFor(code domain.ErrorCode) int {
	switch code {
	case domain.ErrCodeNotFound, domain.ErrCodeTodoNotFound:
		return http.StatusNotFound
	case domain.ErrCodeValidationFailed, domain.ErrCodeUsernameTaken, domain.ErrCodeEmailTaken:
		return http.StatusBadRequest
	case domain.ErrCodeInvalidCredentials, domain.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
