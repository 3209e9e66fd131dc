// internal/shopapi/errors.go
package shopapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Sentinel errors handlers branch on via errors.Is
var (
	ErrNotFound     = errors.New("resource not found")
	ErrUnauthorized = errors.New("authentication required")
)

// ErrorKind tags how an upstream failure should be presented
type ErrorKind string

const (
	// KindFieldErrors carries per-field validation messages
	KindFieldErrors ErrorKind = "field_errors"
	// KindMessage carries a single human-readable message
	KindMessage ErrorKind = "message"
)

// APIError is an upstream error payload normalized at the client boundary.
// The message and field errors are surfaced to the user verbatim.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Fields     map[string][]string
}

// Error returns the upstream message, or a stable rendering of the field
// errors when no form-level message was sent
func (e *APIError) Error() string {
	if e.Kind == KindFieldErrors && len(e.Fields) > 0 {
		names := make([]string, 0, len(e.Fields))
		for name := range e.Fields {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s: %s", name, strings.Join(e.Fields[name], "; ")))
		}
		return strings.Join(parts, ", ")
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("shop api request failed with status %d", e.StatusCode)
}

// Unwrap maps authorization and not-found statuses to their sentinels
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound, http.StatusForbidden:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	}
	return nil
}

// normalizeError turns an upstream error body into an APIError. A JSON
// object with an "error" or "detail" string becomes a message error; an
// object of field names to messages becomes a field error; anything else
// falls back to a generic message.
func normalizeError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{
		Kind:       KindMessage,
		StatusCode: statusCode,
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil || len(payload) == 0 {
		return apiErr
	}

	for _, key := range []string{"error", "detail", "message"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var msg string
		if err := json.Unmarshal(raw, &msg); err == nil && msg != "" {
			apiErr.Message = msg
			return apiErr
		}
	}

	fields := make(map[string][]string, len(payload))
	for name, raw := range payload {
		var many []string
		if err := json.Unmarshal(raw, &many); err == nil {
			fields[name] = many
			continue
		}
		var one string
		if err := json.Unmarshal(raw, &one); err == nil {
			fields[name] = []string{one}
		}
	}
	if len(fields) > 0 {
		apiErr.Kind = KindFieldErrors
		apiErr.Fields = fields
	}
	return apiErr
}
