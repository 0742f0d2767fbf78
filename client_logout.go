package goTasks

import (
	"context"
)

// Logout tears the session down. Local state goes first: the in-memory
// belief and the credential store are cleared before the backend is
// notified, so the caller observes logged-out immediately and independent of
// the network. The remote invalidation is best-effort; its failure is
// visible only through audit events and metrics, never through the return
// value.
//
// Logout is non-reentrant: while one call is in flight, further Logout calls
// are no-ops. A Logout issued while a Login, Register, or Restore is still
// mutating the session is rejected with [ErrOperationInFlight].
func (c *Client) Logout(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if c.closed.Load() {
		return ErrClientClosed
	}
	if !c.loggingOut.CompareAndSwap(false, true) {
		// A logout is already in flight; this call is a no-op.
		return nil
	}
	defer c.loggingOut.Store(false)

	if err := c.beginOp(); err != nil {
		return err
	}

	tok := c.currentToken()
	c.teardownLocal(ctx)
	c.metricInc(MetricLogout)
	c.emit(ctx, EventLogout, true, nil)

	// The mutating part is done; release the slot before the network call so
	// a follow-up Login is not blocked on a slow backend.
	c.endOp()

	if tok != "" {
		if err := c.gateway.LogoutWithToken(ctx, tok); err != nil {
			c.metricInc(MetricLogoutRemoteFailed)
			c.emit(ctx, EventLogoutRemoteFailed, false, err)
		}
	}
	return nil
}
