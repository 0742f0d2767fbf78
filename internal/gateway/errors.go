package gateway

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnauthorized marks an authorization failure: bad credentials on
	// login, or a stale/revoked token on any privileged call.
	ErrUnauthorized = errors.New("gateway: unauthorized")
	// ErrNotFound marks a missing resource.
	ErrNotFound = errors.New("gateway: not found")
	// ErrTransport marks everything that is not a backend verdict: connection
	// failures, timeouts, malformed bodies, 5xx responses.
	ErrTransport = errors.New("gateway: transport failure")
)

// ValidationError carries the backend's field-level messages from a 422
// response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "gateway: validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "gateway: validation failed: " + strings.Join(parts, "; ")
}

// httpError is the raw decoded failure from one exchange, before an endpoint
// maps it into the public error set.
type httpError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *httpError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gateway: backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gateway: backend returned %d", e.Status)
}

// errorEnvelope mirrors the backend's JSON failure shapes. Both "message" and
// "error" appear in the wild; "errors" carries per-field message lists.
type errorEnvelope struct {
	Message string              `json:"message"`
	Err     string              `json:"error"`
	Errors  map[string][]string `json:"errors"`
}

func (e errorEnvelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err
}

func (e errorEnvelope) fields() map[string]string {
	if len(e.Errors) == 0 {
		return nil
	}
	out := make(map[string]string, len(e.Errors))
	for field, msgs := range e.Errors {
		if len(msgs) > 0 {
			out[field] = msgs[0]
		}
	}
	return out
}
