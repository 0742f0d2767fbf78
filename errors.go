package goTasks

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrAuthRejected is an exported constant or variable used by the task client.
	ErrAuthRejected = errors.New("authentication rejected")
	// ErrValidationFailed is an exported constant or variable used by the task client.
	ErrValidationFailed = errors.New("validation failed")
	// ErrNetwork is an exported constant or variable used by the task client.
	ErrNetwork = errors.New("network error")
	// ErrOperationInFlight is an exported constant or variable used by the task client.
	ErrOperationInFlight = errors.New("session operation already in flight")
	// ErrNotAuthenticated is an exported constant or variable used by the task client.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrClientClosed is an exported constant or variable used by the task client.
	ErrClientClosed = errors.New("client closed")
	// ErrInvalidTaskStatus is an exported constant or variable used by the task client.
	ErrInvalidTaskStatus = errors.New("invalid task status")
	// ErrTaskNotFound is an exported constant or variable used by the task client.
	ErrTaskNotFound = errors.New("task not found")
)

// ValidationError carries per-field messages reported by the backend during
// registration. It unwraps to [ErrValidationFailed] so callers can branch with
// errors.Is and inspect Fields with errors.As.
type ValidationError struct {
	Fields map[string]string
}

// Error returns the field messages sorted by field name.
func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return ErrValidationFailed.Error()
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("validation failed: ")
	for i, k := range keys {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", k, e.Fields[k])
	}
	return b.String()
}

// Unwrap ties the typed error into the sentinel taxonomy.
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
