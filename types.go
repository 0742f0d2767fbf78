package goTasks

import (
	"io"
	"time"

	internalaudit "github.com/MrEthical07/goTasks/internal/audit"
)

// SessionStatus represents the lifecycle state of the client session.
type SessionStatus uint8

const (
	// StatusUnknown is the state before Restore has run.
	StatusUnknown SessionStatus = iota
	// StatusChecking is the state while persisted credentials are being
	// reconciled against the backend.
	StatusChecking
	// StatusAuthenticated is the settled state with a current user and token.
	StatusAuthenticated
	// StatusAnonymous is the settled state with no credentials.
	StatusAnonymous
)

// String returns the lowercase name of the status.
func (s SessionStatus) String() string {
	switch s {
	case StatusChecking:
		return "checking"
	case StatusAuthenticated:
		return "authenticated"
	case StatusAnonymous:
		return "anonymous"
	default:
		return "unknown"
	}
}

// Settled reports whether the status is a terminal reconciliation state.
func (s SessionStatus) Settled() bool {
	return s == StatusAuthenticated || s == StatusAnonymous
}

// Profile is the backend-owned user record mirrored locally. It is opaque to
// the client beyond display.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// SessionSnapshot is a point-in-time copy of the session belief returned by
// [Client.Snapshot]. User is non-nil and Token non-empty exactly when Status
// is StatusAuthenticated.
type SessionSnapshot struct {
	Status SessionStatus
	User   *Profile
	Token  string
}

// TaskStatus enumerates the backend's task workflow states.
type TaskStatus string

const (
	// TaskPending is an unstarted task.
	TaskPending TaskStatus = "pending"
	// TaskInProgress is a task being worked on.
	TaskInProgress TaskStatus = "in-progress"
	// TaskCompleted is a finished task.
	TaskCompleted TaskStatus = "completed"
)

// Valid reports whether the status is one the backend accepts.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskPending, TaskInProgress, TaskCompleted:
		return true
	default:
		return false
	}
}

// Label returns the display label for the status.
func (s TaskStatus) Label() string {
	switch s {
	case TaskPending:
		return "Pending"
	case TaskInProgress:
		return "In Progress"
	case TaskCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Task is a backend task record.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at,omitzero"`
	UpdatedAt   time.Time  `json:"updated_at,omitzero"`
}

// TaskInput is the mutable subset of a task sent on create and update.
// An empty Status defaults to TaskPending on create.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status,omitempty"`
}

// AuditEvent is a structured diagnostic record emitted by the client.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the client's audit dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}
