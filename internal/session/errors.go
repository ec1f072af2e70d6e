package session

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInFlight is returned when Login or Register is called while another
// authentication is still running.
var ErrInFlight = errors.New("session: authentication already in progress")

// FieldError is one invalid form field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports malformed input, one message per field. It is
// returned before any authentication starts.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Message returns the message for field, if it failed.
func (e *ValidationError) Message(field string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == field {
			return f.Message, true
		}
	}
	return "", false
}

// AuthError is a failed login or registration. Reason is meant for the user.
type AuthError struct {
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err == nil {
		return e.Reason
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// StorageError is a failed read or write of durable storage. It never ends
// the process; the store keeps or falls back to a usable state.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("session storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
