package handler

import (
	"net/http"

	"github.com/todoapp/todoapp/internal/api/middleware"
	"github.com/todoapp/todoapp/internal/api/request"
	"github.com/todoapp/todoapp/internal/api/response"
	"github.com/todoapp/todoapp/internal/auth"
	"github.com/todoapp/todoapp/internal/domain"
	"github.com/todoapp/todoapp/internal/service"
	"github.com/todoapp/todoapp/internal/store/sqlite"
)

// AuthHandler handles registration and login.
type AuthHandler struct {
	tokens *auth.TokenIssuer
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(tokens *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{tokens: tokens}
}

func (h *AuthHandler) service(r *http.Request) *service.AuthService {
	db := middleware.GetDB(r.Context())
	return service.NewAuthService(sqlite.NewUserRepository(db), h.tokens)
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, domain.NewValidationError(request.InvalidBody()))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		response.Error(w, domain.NewValidationError(errors))
		return
	}

	result, err := h.service(r).Register(r.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, domain.NewValidationError(request.InvalidBody()))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		response.Error(w, domain.NewValidationError(errors))
		return
	}

	result, err := h.service(r).Login(r.Context(), service.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, result)
}
