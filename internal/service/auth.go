package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/todoapp/todoapp/internal/auth"
	"github.com/todoapp/todoapp/internal/domain"
	"github.com/todoapp/todoapp/internal/store/sqlite"
)

// AuthService handles registration, login and token resolution.
type AuthService struct {
	users  *sqlite.UserRepository
	tokens *auth.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *sqlite.UserRepository, tokens *auth.TokenIssuer) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// RegisterInput contains the input for registering a user.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput contains the input for logging in.
type LoginInput struct {
	Username string
	Password string
}

// Register creates an account and returns a token for it. Username
// uniqueness is checked before email uniqueness.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.AuthResult, error) {
	taken, err := s.users.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if taken {
		return nil, domain.NewUsernameTakenError()
	}

	taken, err = s.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if taken {
		return nil, domain.NewEmailTakenError()
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	user := &domain.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, domain.NewInternalError(err)
	}

	return s.result(user)
}

// Login verifies credentials and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*domain.AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewInvalidCredentialsError()
		}
		return nil, domain.NewInternalError(err)
	}

	if !auth.CheckPassword(user.PasswordHash, input.Password) {
		return nil, domain.NewInvalidCredentialsError()
	}

	return s.result(user)
}

// Authenticate resolves a bearer token to its user. Any token problem,
// including a subject that no longer exists, is reported as unauthorized.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	username, err := s.tokens.Parse(token)
	if err != nil {
		return nil, domain.NewUnauthorizedError()
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewUnauthorizedError()
		}
		return nil, domain.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) result(user *domain.User) (*domain.AuthResult, error) {
	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return &domain.AuthResult{
		Token:    token,
		Username: user.Username,
		Email:    user.Email,
	}, nil
}
