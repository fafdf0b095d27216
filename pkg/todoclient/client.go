package todoclient

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// Client is an HTTP client for the todoapp API. It is safe for concurrent
// use; Login and Register replace the token used by later calls.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client

	mu    sync.RWMutex
	token string
}

// NewClient creates a new todoapp API client.
func NewClient(opts ...ClientOption) *Client {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.baseURL, "/"),
		userAgent: cfg.userAgent,
		http:      hc,
		token:     cfg.token,
	}
}

// Token returns the bearer token currently in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetToken replaces the bearer token. An empty token logs the client out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Health checks if the server is healthy.
func (c *Client) Health(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return err
	}

	if err := c.do(req, http.StatusOK, nil); err != nil {
		if IsServerNotRunning(err) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrServerUnhealthy, err)
	}
	return nil
}

// Register creates an account and stores the returned token.
func (c *Client) Register(ctx context.Context, in RegisterRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/register", in)
}

// Login authenticates and stores the returned token.
func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	return c.authenticate(ctx, "/auth/login", loginRequest{Username: username, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body interface{}) (*AuthResponse, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := c.do(req, http.StatusOK, &out); err != nil {
		return nil, err
	}

	c.SetToken(out.Token)
	return &out, nil
}

// ListTodos returns the caller's todos, newest first.
func (c *Client) ListTodos(ctx context.Context) ([]Todo, error) {
	return c.listTodos(ctx, "/todos")
}

// ListTodosByCompleted returns only the caller's completed (or active)
// todos, filtered by the server.
func (c *Client) ListTodosByCompleted(ctx context.Context, completed bool) ([]Todo, error) {
	return c.listTodos(ctx, "/todos?completed="+strconv.FormatBool(completed))
}

func (c *Client) listTodos(ctx context.Context, path string) ([]Todo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var todos []Todo
	if err := c.do(req, http.StatusOK, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// GetTodo returns one todo.
func (c *Client) GetTodo(ctx context.Context, id int64) (*Todo, error) {
	req, err := c.newRequest(ctx, http.MethodGet, todoPath(id), nil)
	if err != nil {
		return nil, err
	}

	var todo Todo
	if err := c.do(req, http.StatusOK, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// CreateTodo creates a todo.
func (c *Client) CreateTodo(ctx context.Context, in CreateTodoRequest) (*Todo, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPost, "/todos", in)
	if err != nil {
		return nil, err
	}

	var todo Todo
	if err := c.do(req, http.StatusCreated, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo applies a partial update.
func (c *Client) UpdateTodo(ctx context.Context, id int64, in UpdateTodoRequest) (*Todo, error) {
	req, err := c.newJSONRequest(ctx, http.MethodPut, todoPath(id), in)
	if err != nil {
		return nil, err
	}

	var todo Todo
	if err := c.do(req, http.StatusOK, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo deletes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete, todoPath(id), nil)
	if err != nil {
		return err
	}

	var out messageResponse
	return c.do(req, http.StatusOK, &out)
}

// ToggleTodo flips a todo's completion flag.
func (c *Client) ToggleTodo(ctx context.Context, id int64) (*Todo, error) {
	req, err := c.newRequest(ctx, http.MethodPatch, todoPath(id)+"/toggle", nil)
	if err != nil {
		return nil, err
	}

	var todo Todo
	if err := c.do(req, http.StatusOK, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

func todoPath(id int64) string {
	return fmt.Sprintf("/todos/%d", id)
}
