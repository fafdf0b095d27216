package request

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// ErrInvalidID is returned when a path id is not a positive integer.
var ErrInvalidID = errors.New("invalid id")

// DecodeJSON decodes JSON from request body into the given value.
func DecodeJSON(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// InvalidBody is the field map reported for undecodable request bodies.
func InvalidBody() map[string]string {
	return map[string]string{"body": "Invalid JSON body"}
}

// ParseCompleted reads the optional ?completed= filter. It returns nil when
// the parameter is absent and a field error map when it is not a boolean.
func ParseCompleted(r *http.Request) (*bool, map[string]string) {
	raw := r.URL.Query().Get("completed")
	if raw == "" {
		return nil, nil
	}
	completed, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, map[string]string{"completed": "Must be true or false"}
	}
	return &completed, nil
}

// ParseID extracts a numeric id URL parameter.
func ParseID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}
