package session

import (
	"context"
	"sync"

	"github.com/todoapp/todoapp/pkg/todoclient"
)

// Messages used when a failure carries no API message.
const (
	msgFetchFailed  = "Failed to fetch todos"
	msgCreateFailed = "Failed to create todo"
	msgUpdateFailed = "Failed to update todo"
	msgDeleteFailed = "Failed to delete todo"
	msgToggleFailed = "Failed to toggle todo"
)

// TodoAPI is the part of the REST client the TodoStore needs.
// *todoclient.Client satisfies it.
type TodoAPI interface {
	ListTodos(ctx context.Context) ([]todoclient.Todo, error)
	CreateTodo(ctx context.Context, in todoclient.CreateTodoRequest) (*todoclient.Todo, error)
	UpdateTodo(ctx context.Context, id int64, in todoclient.UpdateTodoRequest) (*todoclient.Todo, error)
	DeleteTodo(ctx context.Context, id int64) error
	ToggleTodo(ctx context.Context, id int64) (*todoclient.Todo, error)
}

// TodoStore is the client-side todo list. Every operation calls the API and
// then mutates the local list to match, without refetching.
type TodoStore struct {
	api TodoAPI

	mu      sync.RWMutex
	todos   []todoclient.Todo
	loading bool
	err     string
}

// NewTodoStore creates an empty TodoStore.
func NewTodoStore(api TodoAPI) *TodoStore {
	return &TodoStore{api: api}
}

// Todos returns a copy of the list.
func (s *TodoStore) Todos() []todoclient.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]todoclient.Todo(nil), s.todos...)
}

// Completed returns the completed todos, in list order.
func (s *TodoStore) Completed() []todoclient.Todo {
	return s.filter(true)
}

// Active returns the incomplete todos, in list order.
func (s *TodoStore) Active() []todoclient.Todo {
	return s.filter(false)
}

// Loading reports whether an operation is in flight.
func (s *TodoStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Error returns the message of the last failed operation, or "".
func (s *TodoStore) Error() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Fetch replaces the list with the server's.
func (s *TodoStore) Fetch(ctx context.Context) error {
	return s.run(msgFetchFailed, func() (func(), error) {
		todos, err := s.api.ListTodos(ctx)
		if err != nil {
			return nil, err
		}
		return func() { s.todos = todos }, nil
	})
}

// Add creates a todo and puts it at the front of the list.
func (s *TodoStore) Add(ctx context.Context, in todoclient.CreateTodoRequest) error {
	return s.run(msgCreateFailed, func() (func(), error) {
		todo, err := s.api.CreateTodo(ctx, in)
		if err != nil {
			return nil, err
		}
		return func() {
			s.todos = append([]todoclient.Todo{*todo}, s.todos...)
		}, nil
	})
}

// Update applies a partial update and replaces the todo in the list if
// present.
func (s *TodoStore) Update(ctx context.Context, id int64, in todoclient.UpdateTodoRequest) error {
	return s.run(msgUpdateFailed, func() (func(), error) {
		todo, err := s.api.UpdateTodo(ctx, id, in)
		if err != nil {
			return nil, err
		}
		return func() { s.replace(id, *todo) }, nil
	})
}

// Toggle flips completion and replaces the todo in the list if present.
func (s *TodoStore) Toggle(ctx context.Context, id int64) error {
	return s.run(msgToggleFailed, func() (func(), error) {
		todo, err := s.api.ToggleTodo(ctx, id)
		if err != nil {
			return nil, err
		}
		return func() { s.replace(id, *todo) }, nil
	})
}

// Delete removes the todo on the server and from the list.
func (s *TodoStore) Delete(ctx context.Context, id int64) error {
	return s.run(msgDeleteFailed, func() (func(), error) {
		if err := s.api.DeleteTodo(ctx, id); err != nil {
			return nil, err
		}
		return func() {
			kept := s.todos[:0:0]
			for _, t := range s.todos {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			s.todos = kept
		}, nil
	})
}

// run sets loading, clears the error and calls op without holding the lock.
// On success the returned mutation is applied under the lock; on failure the
// error message is recorded. Loading is always reset.
func (s *TodoStore) run(fallback string, op func() (func(), error)) error {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	apply, err := op()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = todoclient.MessageOf(err)
		if s.err == "" {
			s.err = fallback
		}
		return err
	}
	apply()
	return nil
}

// replace swaps in todo for the entry with id. Callers hold mu.
func (s *TodoStore) replace(id int64, todo todoclient.Todo) {
	for i := range s.todos {
		if s.todos[i].ID == id {
			s.todos[i] = todo
			return
		}
	}
}

func (s *TodoStore) filter(completed bool) []todoclient.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []todoclient.Todo
	for _, t := range s.todos {
		if t.Completed == completed {
			out = append(out, t)
		}
	}
	return out
}
