package todoclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient()

	if client.baseURL != DefaultBaseURL {
		t.Errorf("expected base URL %q, got %q", DefaultBaseURL, client.baseURL)
	}
	if client.http.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", client.http.Timeout)
	}
	if client.Token() != "" {
		t.Errorf("expected empty token, got %q", client.Token())
	}
}

func TestNewClient_Options(t *testing.T) {
	hc := &http.Client{}
	client := NewClient(
		WithBaseURL("http://example.com:9000/"),
		WithToken("abc"),
		WithHTTPClient(hc),
	)

	if client.baseURL != "http://example.com:9000" {
		t.Errorf("expected trailing slash trimmed, got %q", client.baseURL)
	}
	if client.Token() != "abc" {
		t.Errorf("expected token 'abc', got %q", client.Token())
	}
	if client.http != hc {
		t.Error("expected custom HTTP client to be used")
	}
}

func TestUserAgentHeader(t *testing.T) {
	var got string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithUserAgent("todoapp-cli (alice@box)"))
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "todoapp-cli (alice@box)" {
		t.Errorf("expected User-Agent to be sent, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    error
	}{
		{
			name:       "healthy server",
			statusCode: http.StatusOK,
			wantErr:    nil,
		},
		{
			name:       "unhealthy server",
			statusCode: http.StatusInternalServerError,
			wantErr:    ErrServerUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/health" {
					t.Errorf("expected path /api/health, got %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))
			err := client.Health(context.Background())

			if tt.wantErr == nil && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestServerNotRunning(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(WithBaseURL(url))
	_, err := client.ListTodos(context.Background())

	if !IsServerNotRunning(err) {
		t.Errorf("expected ErrServerNotRunning, got %v", err)
	}
}

func TestLogin_StoresToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/auth/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body loginRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body.Username != "testuser2" || body.Password != "password123" {
			t.Errorf("unexpected credentials %+v", body)
		}
		json.NewEncoder(w).Encode(AuthResponse{Token: "tok", Username: "testuser2", Email: "t@example.com"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))
	resp, err := client.Login(context.Background(), "testuser2", "password123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Username != "testuser2" {
		t.Errorf("expected username testuser2, got %q", resp.Username)
	}
	if client.Token() != "tok" {
		t.Errorf("expected stored token 'tok', got %q", client.Token())
	}
}

func TestBearerHeader(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("[]"))
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithToken("secret-token"))
	if _, err := client.ListTodos(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(error) bool
		msg    string
	}{
		{
			name:   "todo not found",
			status: http.StatusNotFound,
			body:   `{"code":"TODO_NOT_FOUND","message":"Todo 7 not found"}`,
			check:  IsNotFound,
			msg:    "Todo 7 not found",
		},
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			body:   `{"code":"UNAUTHORIZED","message":"Authentication required"}`,
			check:  IsUnauthorized,
			msg:    "Authentication required",
		},
		{
			name:   "validation",
			status: http.StatusBadRequest,
			body:   `{"code":"VALIDATION_FAILED","message":"Invalid input","errors":{"title":"title is required"}}`,
			check:  IsValidation,
			msg:    "Invalid input",
		},
		{
			name:   "plain text body",
			status: http.StatusBadGateway,
			body:   "bad gateway",
			check:  func(err error) bool { return MessageOf(err) == "bad gateway" },
			msg:    "bad gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(WithBaseURL(server.URL))
			_, err := client.GetTodo(context.Background(), 7)
			if err == nil {
				t.Fatal("expected error")
			}
			if !tt.check(err) {
				t.Errorf("error %v did not match expected kind", err)
			}
			if err.Error() != tt.msg {
				t.Errorf("expected message %q, got %q", tt.msg, err.Error())
			}

			var apiErr *Error
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.status {
				t.Errorf("expected *Error with status %d, got %#v", tt.status, err)
			}
		})
	}
}
