package middleware

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/todoapp/todoapp/internal/domain"
	"github.com/todoapp/todoapp/internal/store"
)

type contextKey string

const (
	// DBKey is the context key for the database connection.
	DBKey contextKey = "db"
	// UserKey is the context key for the authenticated user.
	UserKey contextKey = "user"
)

// Database injects the manager's connection into the request context.
func Database(manager *store.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), DBKey, manager.DB())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetDB retrieves the database connection from context.
func GetDB(ctx context.Context) *sql.DB {
	if db, ok := ctx.Value(DBKey).(*sql.DB); ok {
		return db
	}
	return nil
}

// GetUser retrieves the authenticated user from context.
func GetUser(ctx context.Context) *domain.User {
	if user, ok := ctx.Value(UserKey).(*domain.User); ok {
		return user
	}
	return nil
}
