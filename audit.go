package goTasks

import (
	"context"
	"time"

	internalaudit "github.com/MrEthical07/goTasks/internal/audit"
)

// Audit event types emitted by the client. Events describe session
// transitions and gateway outcomes; they never carry passwords or tokens.
const (
	// EventLoginSuccess is an exported constant or variable used by the task client.
	EventLoginSuccess = "login.success"
	// EventLoginFailure is an exported constant or variable used by the task client.
	EventLoginFailure = "login.failure"
	// EventRegisterSuccess is an exported constant or variable used by the task client.
	EventRegisterSuccess = "register.success"
	// EventRegisterFailure is an exported constant or variable used by the task client.
	EventRegisterFailure = "register.failure"
	// EventLogout is an exported constant or variable used by the task client.
	EventLogout = "logout.local"
	// EventLogoutRemoteFailed is an exported constant or variable used by the task client.
	EventLogoutRemoteFailed = "logout.remote_failed"
	// EventRestoreSettled is an exported constant or variable used by the task client.
	EventRestoreSettled = "restore.settled"
	// EventVerifyRejected is an exported constant or variable used by the task client.
	EventVerifyRejected = "verify.rejected"
	// EventImplicitTeardown is an exported constant or variable used by the task client.
	EventImplicitTeardown = "session.implicit_teardown"
	// EventStoreFault is an exported constant or variable used by the task client.
	EventStoreFault = "credstore.fault"
)

// emit builds and dispatches one audit event. Safe on a client with auditing
// disabled; the nil dispatcher drops everything.
func (c *Client) emit(ctx context.Context, eventType string, success bool, emitErr error) {
	var userID int64
	var email string

	c.mu.Lock()
	if c.user != nil {
		userID = c.user.ID
		email = c.user.Email
	}
	status := c.status
	c.mu.Unlock()

	event := internalaudit.Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		UserID:    userID,
		Email:     email,
		Status:    status.String(),
		Success:   success,
	}
	if emitErr != nil {
		event.Error = emitErr.Error()
	}

	c.audit.Emit(ctx, event)
}
