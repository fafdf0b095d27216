package handler

import (
	"net/http"

	"github.com/todoapp/todoapp/internal/api/middleware"
	"github.com/todoapp/todoapp/internal/api/request"
	"github.com/todoapp/todoapp/internal/api/response"
	"github.com/todoapp/todoapp/internal/domain"
	"github.com/todoapp/todoapp/internal/service"
	"github.com/todoapp/todoapp/internal/store/sqlite"
)

// TodoHandler handles todo CRUD operations for the authenticated user.
type TodoHandler struct{}

// NewTodoHandler creates a new TodoHandler.
func NewTodoHandler() *TodoHandler {
	return &TodoHandler{}
}

func (h *TodoHandler) service(r *http.Request) *service.TodoService {
	db := middleware.GetDB(r.Context())
	return service.NewTodoService(sqlite.NewTodoRepository(db))
}

// ListTodos handles GET /api/todos[?completed=true|false].
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	completed, fields := request.ParseCompleted(r)
	if fields != nil {
		response.Error(w, domain.NewValidationError(fields))
		return
	}

	todos, err := h.service(r).List(r.Context(), user.ID, completed)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, todos)
}

// GetTodo handles GET /api/todos/{id}.
func (h *TodoHandler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := request.ParseID(r, "id")
	if err != nil {
		response.Error(w, domain.NewNotFoundError())
		return
	}
	user := middleware.GetUser(r.Context())

	todo, err := h.service(r).Get(r.Context(), user.ID, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, todo)
}

// CreateTodo handles POST /api/todos.
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req request.CreateTodoRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, domain.NewValidationError(request.InvalidBody()))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		response.Error(w, domain.NewValidationError(errors))
		return
	}

	user := middleware.GetUser(r.Context())
	todo, err := h.service(r).Create(r.Context(), user.ID, service.CreateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, todo)
}

// UpdateTodo handles PUT /api/todos/{id}.
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := request.ParseID(r, "id")
	if err != nil {
		response.Error(w, domain.NewNotFoundError())
		return
	}

	var req request.UpdateTodoRequest
	if err := request.DecodeJSON(r, &req); err != nil {
		response.Error(w, domain.NewValidationError(request.InvalidBody()))
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		response.Error(w, domain.NewValidationError(errors))
		return
	}

	user := middleware.GetUser(r.Context())
	todo, err := h.service(r).Update(r.Context(), user.ID, id, service.UpdateTodoInput{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, todo)
}

// DeleteTodo handles DELETE /api/todos/{id}.
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := request.ParseID(r, "id")
	if err != nil {
		response.Error(w, domain.NewNotFoundError())
		return
	}
	user := middleware.GetUser(r.Context())

	if err := h.service(r).Delete(r.Context(), user.ID, id); err != nil {
		response.Error(w, err)
		return
	}

	response.Message(w, "Todo deleted")
}

// ToggleTodo handles PATCH /api/todos/{id}/toggle.
func (h *TodoHandler) ToggleTodo(w http.ResponseWriter, r *http.Request) {
	id, err := request.ParseID(r, "id")
	if err != nil {
		response.Error(w, domain.NewNotFoundError())
		return
	}
	user := middleware.GetUser(r.Context())

	todo, err := h.service(r).Toggle(r.Context(), user.ID, id)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, todo)
}
