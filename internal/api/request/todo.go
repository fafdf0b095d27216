package request

import "github.com/todoapp/todoapp/internal/domain"

// CreateTodoRequest represents a request to create a todo.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Validate validates the create todo request.
func (r *CreateTodoRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if domain.IsBlank(r.Title) {
		errors["title"] = "title is required"
	}

	return errors
}

// UpdateTodoRequest represents a partial update. Absent fields are left as is.
type UpdateTodoRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Completed   *bool   `json:"completed,omitempty"`
}

// Validate validates the update todo request.
func (r *UpdateTodoRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Title != nil && domain.IsBlank(*r.Title) {
		errors["title"] = "title cannot be empty"
	}

	return errors
}
