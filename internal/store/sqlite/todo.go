package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/todoapp/todoapp/internal/domain"
)

const todoColumns = `id, user_id, title, description, completed, created_at, updated_at`

// TodoRepository handles todo persistence operations. Every query is scoped
// to a user ID.
type TodoRepository struct {
	db *sql.DB
}

// NewTodoRepository creates a new TodoRepository.
func NewTodoRepository(db *sql.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// Create inserts a todo and sets its ID.
func (r *TodoRepository) Create(ctx context.Context, todo *domain.Todo) error {
	query := `
		INSERT INTO todos (user_id, title, description, completed, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, query,
		todo.UserID,
		todo.Title,
		todo.Description,
		todo.Completed,
		formatTime(todo.CreatedAt),
		formatTime(todo.UpdatedAt),
	)
	if err != nil {
		return err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	todo.ID = id
	return nil
}

// GetByID retrieves a todo owned by userID. Returns sql.ErrNoRows when the
// todo does not exist or belongs to someone else.
func (r *TodoRepository) GetByID(ctx context.Context, id, userID int64) (*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND user_id = ?`
	return scanTodo(r.db.QueryRowContext(ctx, query, id, userID))
}

// ListByUser returns the user's todos, newest first.
func (r *TodoRepository) ListByUser(ctx context.Context, userID int64) ([]*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, userID)
}

// ListByCompleted returns the user's todos filtered by completion, newest first.
func (r *TodoRepository) ListByCompleted(ctx context.Context, userID int64, completed bool) ([]*domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = ? AND completed = ? ORDER BY created_at DESC, id DESC`
	return r.query(ctx, query, userID, completed)
}

// Update persists title, description, completion and updated_at.
func (r *TodoRepository) Update(ctx context.Context, todo *domain.Todo) error {
	query := `
		UPDATE todos SET title = ?, description = ?, completed = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := r.db.ExecContext(ctx, query,
		todo.Title,
		todo.Description,
		todo.Completed,
		formatTime(todo.UpdatedAt),
		todo.ID,
		todo.UserID,
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// Delete removes a todo owned by userID.
func (r *TodoRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

func (r *TodoRepository) query(ctx context.Context, query string, args ...interface{}) ([]*domain.Todo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var todos []*domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	return todos, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTodo(row rowScanner) (*domain.Todo, error) {
	var todo domain.Todo
	var description sql.NullString
	var createdAt, updatedAt string

	if err := row.Scan(
		&todo.ID,
		&todo.UserID,
		&todo.Title,
		&description,
		&todo.Completed,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	if description.Valid {
		todo.Description = &description.String
	}
	todo.CreatedAt = parseTime(createdAt)
	todo.UpdatedAt = parseTime(updatedAt)

	return &todo, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Timestamps are stored as fixed-width UTC text so that lexical order in SQL
// matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts the storage layout and plain RFC3339, which is what
// hand-written fixture scripts tend to use.
func parseTime(s string) time.Time {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}
