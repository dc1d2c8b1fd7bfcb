package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidCredentials is returned when login is rejected
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned when the bearer token is missing or rejected
	ErrUnauthorized = errors.New("not authorized")
	// ErrConflict is returned when the server refuses a state transition,
	// e.g. accepting a report while another one is already active
	ErrConflict = errors.New("conflicting state")
	// ErrNotFound is returned for missing resources
	ErrNotFound = errors.New("not found")
)

// StatusError carries an unexpected HTTP status with the response body
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// FieldError is one entry of a structured validation failure
type FieldError struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// Field returns the form field the error refers to (last path element)
func (f FieldError) Field() string {
	for i := len(f.Loc) - 1; i >= 0; i-- {
		if f.Loc[i] != "body" {
			return f.Loc[i]
		}
	}
	return ""
}

// ValidationError maps server-side field validation failures so forms can
// surface them next to the offending field
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if field := f.Field(); field != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", field, f.Msg))
		} else {
			parts = append(parts, f.Msg)
		}
	}
	if len(parts) == 0 {
		return "validation failed"
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ByField returns the first message per field name
func (e *ValidationError) ByField() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		field := f.Field()
		if _, seen := out[field]; !seen {
			out[field] = f.Msg
		}
	}
	return out
}

// parseValidationError decodes the structured `{"detail":[{loc,msg}]}` payload.
// Returns nil when the body does not carry field-level details.
func parseValidationError(body []byte) *ValidationError {
	var payload struct {
		Detail []FieldError `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return nil
	}
	return &ValidationError{Fields: payload.Detail}
}
