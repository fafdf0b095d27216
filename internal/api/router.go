package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/todoapp/todoapp/internal/api/handler"
	"github.com/todoapp/todoapp/internal/api/middleware"
	"github.com/todoapp/todoapp/internal/auth"
	"github.com/todoapp/todoapp/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(manager *store.Manager, tokens *auth.TokenIssuer, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware chain
	r.Use(middleware.Recovery(logger))
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Database(manager))

	systemHandler := handler.NewSystemHandler(manager)
	authHandler := handler.NewAuthHandler(tokens)
	todoHandler := handler.NewTodoHandler()

	r.NotFound(systemHandler.NotFound)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", systemHandler.Health)

		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		r.Route("/todos", func(r chi.Router) {
			r.Use(middleware.Authenticate(tokens))

			r.Get("/", todoHandler.ListTodos)
			r.Post("/", todoHandler.CreateTodo)
			r.Get("/{id}", todoHandler.GetTodo)
			r.Put("/{id}", todoHandler.UpdateTodo)
			r.Delete("/{id}", todoHandler.DeleteTodo)
			r.Patch("/{id}/toggle", todoHandler.ToggleTodo)
		})
	})

	return r
}
