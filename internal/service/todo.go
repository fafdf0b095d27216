package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/todoapp/todoapp/internal/domain"
	"github.com/todoapp/todoapp/internal/store/sqlite"
)

// TodoService handles todo business logic. Every operation is scoped to the
// owning user; another user's todo is indistinguishable from a missing one.
type TodoService struct {
	todoRepo *sqlite.TodoRepository
}

// NewTodoService creates a new TodoService.
func NewTodoService(todoRepo *sqlite.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

// CreateTodoInput contains the input for creating a todo.
type CreateTodoInput struct {
	Title       string
	Description *string
	Completed   *bool
}

// UpdateTodoInput contains the input for updating a todo. Nil fields are
// left untouched.
type UpdateTodoInput struct {
	Title       *string
	Description *string
	Completed   *bool
}

// List returns the user's todos, newest first. A non-nil completed keeps
// only todos in that state.
func (s *TodoService) List(ctx context.Context, userID int64, completed *bool) ([]*domain.Todo, error) {
	var todos []*domain.Todo
	var err error
	if completed != nil {
		todos, err = s.todoRepo.ListByCompleted(ctx, userID, *completed)
	} else {
		todos, err = s.todoRepo.ListByUser(ctx, userID)
	}
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if todos == nil {
		todos = []*domain.Todo{}
	}
	return todos, nil
}

// Get retrieves one of the user's todos.
func (s *TodoService) Get(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	todo, err := s.todoRepo.GetByID(ctx, id, userID)
	if err != nil {
		return nil, mapNotFound(err, id)
	}
	return todo, nil
}

// Create creates a todo for the user.
func (s *TodoService) Create(ctx context.Context, userID int64, input CreateTodoInput) (*domain.Todo, error) {
	todo := domain.NewTodo(userID, input.Title)
	todo.Description = input.Description
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}

	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, domain.NewInternalError(err)
	}
	return todo, nil
}

// Update applies a partial update to one of the user's todos.
func (s *TodoService) Update(ctx context.Context, userID, id int64, input UpdateTodoInput) (*domain.Todo, error) {
	todo, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		todo.Title = *input.Title
	}
	if input.Description != nil {
		todo.Description = input.Description
	}
	if input.Completed != nil {
		todo.Completed = *input.Completed
	}
	todo.UpdatedAt = time.Now().UTC()

	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, mapNotFound(err, id)
	}
	return todo, nil
}

// Toggle flips the completion flag of one of the user's todos.
func (s *TodoService) Toggle(ctx context.Context, userID, id int64) (*domain.Todo, error) {
	todo, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	todo.Toggle()
	if err := s.todoRepo.Update(ctx, todo); err != nil {
		return nil, mapNotFound(err, id)
	}
	return todo, nil
}

// Delete removes one of the user's todos.
func (s *TodoService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.todoRepo.Delete(ctx, id, userID); err != nil {
		return mapNotFound(err, id)
	}
	return nil
}

func mapNotFound(err error, id int64) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewTodoNotFoundError(id)
	}
	return domain.NewInternalError(err)
}
