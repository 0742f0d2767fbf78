package goTasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/MrEthical07/goTasks/credstore"
	internalaudit "github.com/MrEthical07/goTasks/internal/audit"
	"github.com/MrEthical07/goTasks/internal/gateway"
)

// Client owns the one session of a running process: the in-memory belief
// about "current user or none", the persisted credential mirror, and the
// gateway used to reconcile both against the backend.
//
// All methods are safe for concurrent use. At most one session-mutating
// operation (Restore, Login, Register, Logout) runs at a time; a conflicting
// call fails fast with [ErrOperationInFlight] instead of queuing.
type Client struct {
	config  Config
	store   credstore.Store
	gateway *gateway.Client
	audit   *internalaudit.Dispatcher
	metrics *Metrics

	mu     sync.Mutex
	status SessionStatus
	user   *Profile
	token  string
	busy   bool
	// reconcileCh is non-nil while a Restore verification is settling;
	// closed when it settles.
	reconcileCh chan struct{}

	loggingOut atomic.Bool
	closed     atomic.Bool
}

// Close flushes and stops the audit dispatcher. The client is unusable
// afterwards.
func (c *Client) Close() {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.audit.Close()
}

// Status returns the current session status.
func (c *Client) Status() SessionStatus {
	if c == nil {
		return StatusUnknown
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// CurrentUser returns a copy of the authenticated profile, or nil when the
// session is not authenticated.
func (c *Client) CurrentUser() *Profile {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Token returns the bearer token held in memory, or "" when anonymous.
func (c *Client) Token() string {
	if c == nil {
		return ""
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// IsAuthenticated reports whether the session has settled as authenticated.
func (c *Client) IsAuthenticated() bool {
	return c.Status() == StatusAuthenticated
}

// IsLoggingOut reports whether a logout is currently in flight.
func (c *Client) IsLoggingOut() bool {
	return c != nil && c.loggingOut.Load()
}

// Snapshot returns a point-in-time copy of the session belief.
func (c *Client) Snapshot() SessionSnapshot {
	if c == nil {
		return SessionSnapshot{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := SessionSnapshot{Status: c.status, Token: c.token}
	if c.user != nil {
		u := *c.user
		snap.User = &u
	}
	return snap
}

// MetricsSnapshot returns a deep copy of the client's metrics.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return c.metrics.Snapshot()
}

// AuditDropped returns how many audit events were dropped under
// [AuditConfig.DropIfFull].
func (c *Client) AuditDropped() uint64 {
	if c == nil {
		return 0
	}
	return c.audit.Dropped()
}

func (c *Client) metricInc(id MetricID) {
	if c == nil {
		return
	}
	c.metrics.Inc(id)
}

// currentToken is the gateway's token source.
func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// beginOp claims the single mutating-operation slot.
func (c *Client) beginOp() error {
	if c.closed.Load() {
		return ErrClientClosed
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrOperationInFlight
	}
	c.busy = true
	return nil
}

func (c *Client) endOp() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}

// setAuthenticated installs a settled authenticated belief.
func (c *Client) setAuthenticated(user Profile, token string) {
	c.mu.Lock()
	c.status = StatusAuthenticated
	u := user
	c.user = &u
	c.token = token
	c.mu.Unlock()
}

// setAnonymous installs a settled anonymous belief.
func (c *Client) setAnonymous() {
	c.mu.Lock()
	c.status = StatusAnonymous
	c.user = nil
	c.token = ""
	c.mu.Unlock()
}

// teardownLocal clears the in-memory session and the persisted mirror. Local
// state is the source of truth for "logged out"; store faults are diagnostic
// only.
func (c *Client) teardownLocal(ctx context.Context) {
	c.setAnonymous()
	if err := c.store.Clear(ctx); err != nil {
		c.emit(ctx, EventStoreFault, false, err)
	}
}

// implicitTeardown handles a 401 observed on any privileged call: an
// unauthorized response means the token is dead, whoever noticed it first.
func (c *Client) implicitTeardown(ctx context.Context, cause error) {
	c.metricInc(MetricImplicitTeardown)
	c.teardownLocal(ctx)
	c.emit(ctx, EventImplicitTeardown, true, cause)
}

// mapGatewayErr converts the gateway's closed error set into the public
// taxonomy. Downstream code never inspects transport detail.
func mapGatewayErr(err error) error {
	if err == nil {
		return nil
	}

	var ve *gateway.ValidationError
	switch {
	case errors.As(err, &ve):
		return &ValidationError{Fields: ve.Fields}
	case errors.Is(err, gateway.ErrUnauthorized):
		return fmt.Errorf("%w: %v", ErrAuthRejected, err)
	case errors.Is(err, gateway.ErrNotFound):
		return fmt.Errorf("%w: %v", ErrTaskNotFound, err)
	default:
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}
