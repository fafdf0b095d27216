package request

import (
	"net/http/httptest"
	"testing"
)

func TestRegisterRequest_Validate(t *testing.T) {
	tests := []struct {
		name       string
		req        RegisterRequest
		wantFields []string
	}{
		{
			name: "valid",
			req:  RegisterRequest{Username: "newuser", Email: "new@example.com", Password: "password123"},
		},
		{
			name:       "all empty",
			req:        RegisterRequest{},
			wantFields: []string{"username", "email", "password"},
		},
		{
			name:       "short username",
			req:        RegisterRequest{Username: "ab", Email: "ab@example.com", Password: "password123"},
			wantFields: []string{"username"},
		},
		{
			name:       "bad email",
			req:        RegisterRequest{Username: "newuser", Email: "not-an-email", Password: "password123"},
			wantFields: []string{"email"},
		},
		{
			name:       "display name email",
			req:        RegisterRequest{Username: "newuser", Email: "New <new@example.com>", Password: "password123"},
			wantFields: []string{"email"},
		},
		{
			name:       "short password",
			req:        RegisterRequest{Username: "newuser", Email: "new@example.com", Password: "short"},
			wantFields: []string{"password"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := tt.req.Validate()
			if len(errs) != len(tt.wantFields) {
				t.Fatalf("expected %d errors, got %v", len(tt.wantFields), errs)
			}
			for _, f := range tt.wantFields {
				if _, ok := errs[f]; !ok {
					t.Errorf("expected error for field %q, got %v", f, errs)
				}
			}
		})
	}
}

func TestLoginRequest_Validate(t *testing.T) {
	req := LoginRequest{Username: "  ", Password: ""}
	errs := req.Validate()
	if len(errs) != 2 {
		t.Errorf("expected 2 errors, got %v", errs)
	}
}

func TestTodoRequests_Validate(t *testing.T) {
	create := CreateTodoRequest{Title: "   "}
	if errs := create.Validate(); errs["title"] == "" {
		t.Errorf("expected title error for blank title, got %v", errs)
	}

	blank := ""
	update := UpdateTodoRequest{Title: &blank}
	if errs := update.Validate(); errs["title"] == "" {
		t.Errorf("expected title error for empty update title, got %v", errs)
	}

	if errs := (&UpdateTodoRequest{}).Validate(); len(errs) != 0 {
		t.Errorf("expected no errors for empty update, got %v", errs)
	}
}

func TestParseCompleted(t *testing.T) {
	tests := []struct {
		query     string
		want      *bool
		wantField bool
	}{
		{query: "", want: nil},
		{query: "?completed=true", want: boolPtr(true)},
		{query: "?completed=false", want: boolPtr(false)},
		{query: "?completed=1", want: boolPtr(true)},
		{query: "?completed=maybe", wantField: true},
	}

	for _, tt := range tests {
		r := httptest.NewRequest("GET", "/api/todos"+tt.query, nil)
		got, fields := ParseCompleted(r)
		if tt.wantField {
			if fields["completed"] == "" {
				t.Errorf("%q: expected completed field error, got %v", tt.query, fields)
			}
			continue
		}
		if fields != nil {
			t.Errorf("%q: unexpected field errors %v", tt.query, fields)
		}
		if (got == nil) != (tt.want == nil) || (got != nil && *got != *tt.want) {
			t.Errorf("%q: got %v, want %v", tt.query, got, tt.want)
		}
	}
}

func boolPtr(b bool) *bool { return &b }
