package request

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// LoginRequest represents a login request.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the login request.
func (r *LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.Username) == "" {
		errors["username"] = "username is required"
	}
	if strings.TrimSpace(r.Password) == "" {
		errors["password"] = "password is required"
	}

	return errors
}

// RegisterRequest represents a registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate validates the register request.
func (r *RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	switch n := utf8.RuneCountInString(r.Username); {
	case strings.TrimSpace(r.Username) == "":
		errors["username"] = "username is required"
	case n < 3 || n > 50:
		errors["username"] = "username must be between 3 and 50 characters"
	}

	switch {
	case strings.TrimSpace(r.Email) == "":
		errors["email"] = "email is required"
	case !validEmail(r.Email):
		errors["email"] = "email must be a valid address"
	}

	switch {
	case strings.TrimSpace(r.Password) == "":
		errors["password"] = "password is required"
	case utf8.RuneCountInString(r.Password) < 8:
		errors["password"] = "password must be at least 8 characters"
	}

	return errors
}

// validEmail accepts a bare addr-spec; display names are rejected.
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}
