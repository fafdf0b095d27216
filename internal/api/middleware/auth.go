package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/todoapp/todoapp/internal/api/response"
	"github.com/todoapp/todoapp/internal/auth"
	"github.com/todoapp/todoapp/internal/domain"
	"github.com/todoapp/todoapp/internal/service"
	"github.com/todoapp/todoapp/internal/store/sqlite"
)

const bearerPrefix = "Bearer "

// Authenticate requires a valid bearer token and puts its user in context.
// Must run after Database.
func Authenticate(tokens *auth.TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				response.Error(w, domain.NewUnauthorizedError())
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

			svc := service.NewAuthService(sqlite.NewUserRepository(GetDB(r.Context())), tokens)
			user, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				response.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
