package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/todoapp/todoapp/pkg/todoclient"
)

// Storage keys holding the credentials.
const (
	KeyToken    = "token"
	KeyUsername = "username"
	KeyEmail    = "email"
)

// AuthAPI is the part of the REST client the AuthStore needs.
// *todoclient.Client satisfies it.
type AuthAPI interface {
	Login(ctx context.Context, username, password string) (*todoclient.AuthResponse, error)
	Register(ctx context.Context, in todoclient.RegisterRequest) (*todoclient.AuthResponse, error)
	SetToken(token string)
}

// AuthStore holds the signed-in user's credentials and mirrors them into
// Storage.
type AuthStore struct {
	api     AuthAPI
	storage Storage
	logger  *zap.Logger

	mu       sync.RWMutex
	token    string
	username string
	email    string
}

// NewAuthStore restores credentials from storage and hands any saved token
// to the API client.
func NewAuthStore(api AuthAPI, storage Storage, logger *zap.Logger) *AuthStore {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &AuthStore{api: api, storage: storage, logger: logger}
	s.token, _ = storage.Get(KeyToken)
	s.username, _ = storage.Get(KeyUsername)
	s.email, _ = storage.Get(KeyEmail)

	if s.token != "" {
		api.SetToken(s.token)
	}
	return s
}

// Token returns the current bearer token, or "".
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Username returns the signed-in username, or "".
func (s *AuthStore) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// Email returns the signed-in user's email, or "".
func (s *AuthStore) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

// IsAuthenticated reports whether a token is held.
func (s *AuthStore) IsAuthenticated() bool {
	return s.Token() != ""
}

// Login authenticates and stores the credentials. On failure the state is
// unchanged and the API error is returned.
func (s *AuthStore) Login(ctx context.Context, username, password string) error {
	resp, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.logger.Error("login failed", zap.String("username", username), zap.Error(err))
		return err
	}
	return s.set(resp)
}

// Register creates an account and stores the credentials. On failure the
// state is unchanged and the API error is returned.
func (s *AuthStore) Register(ctx context.Context, in todoclient.RegisterRequest) error {
	resp, err := s.api.Register(ctx, in)
	if err != nil {
		s.logger.Error("registration failed", zap.String("username", in.Username), zap.Error(err))
		return err
	}
	return s.set(resp)
}

// Logout forgets the credentials in memory, in storage and in the client.
func (s *AuthStore) Logout() error {
	s.mu.Lock()
	s.token, s.username, s.email = "", "", ""
	s.mu.Unlock()

	s.api.SetToken("")

	var firstErr error
	for _, key := range []string{KeyToken, KeyUsername, KeyEmail} {
		if err := s.storage.Remove(key); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *AuthStore) set(resp *todoclient.AuthResponse) error {
	s.mu.Lock()
	s.token, s.username, s.email = resp.Token, resp.Username, resp.Email
	s.mu.Unlock()

	for _, kv := range [][2]string{
		{KeyToken, resp.Token},
		{KeyUsername, resp.Username},
		{KeyEmail, resp.Email},
	} {
		if err := s.storage.Set(kv[0], kv[1]); err != nil {
			return err
		}
	}
	return nil
}
