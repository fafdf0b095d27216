package domain

import (
	"strings"
	"time"
)

// Todo is a single todo item owned by a user.
type Todo struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"-"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewTodo creates an incomplete todo for the given user.
func NewTodo(userID int64, title string) *Todo {
	now := time.Now().UTC()
	return &Todo{
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// SetDescription sets the todo description.
func (t *Todo) SetDescription(desc string) {
	t.Description = &desc
}

// Toggle flips the completion flag and bumps UpdatedAt.
func (t *Todo) Toggle() {
	t.Completed = !t.Completed
	t.UpdatedAt = time.Now().UTC()
}

// IsBlank reports whether s is empty after trimming whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
