package goTasks

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/MrEthical07/goTasks/credstore"
	"github.com/MrEthical07/goTasks/internal/gateway"
	"github.com/MrEthical07/goTasks/internal/token"
)

// Restore reconciles the session with the persisted credential store. It is
// the startup operation of a client process.
//
// With no stored record the session settles StatusAnonymous immediately. With
// a stored record the session optimistically becomes StatusAuthenticated on
// the cached profile and a background verification confirms the token against
// the backend: a rejected token clears the store and settles StatusAnonymous,
// an unreachable backend leaves the optimistic belief standing (privileged
// calls still carry the token and tear down on their own rejections).
//
// The returned snapshot is the immediate, possibly optimistic, belief. Use
// [Client.AwaitReconcile] to observe the settled outcome.
func (c *Client) Restore(ctx context.Context) (SessionSnapshot, error) {
	if err := c.beginOp(); err != nil {
		return c.Snapshot(), err
	}

	ch := make(chan struct{})
	c.mu.Lock()
	c.status = StatusChecking
	c.reconcileCh = ch
	c.mu.Unlock()

	rec, ok, err := c.store.Read(ctx)
	if err != nil {
		c.emit(ctx, EventStoreFault, false, err)
		ok = false
	}

	var cached Profile
	if ok {
		// The store already guarantees valid JSON; a record that does not
		// shape up as a profile is treated exactly like an absent one.
		if jerr := json.Unmarshal(rec.UserJSON, &cached); jerr != nil || cached.ID == 0 {
			ok = false
		}
	}

	if !ok {
		c.metricInc(MetricRestoreMiss)
		c.setAnonymous()
		c.endOp()
		c.settleReconcile(ch)
		c.emit(ctx, EventRestoreSettled, true, nil)
		return c.Snapshot(), nil
	}

	optimistic := true
	if c.config.Token.InspectJWT && token.ExpiredBy(rec.Token, time.Now(), c.config.Token.Leeway) {
		// The cached token is a JWT that is already past its exp claim, so
		// presenting it as authenticated would be a lie the backend is about
		// to correct. Hold at Checking until verification settles.
		optimistic = false
		c.metricInc(MetricRestoreExpiredSkip)
	}

	if optimistic {
		c.metricInc(MetricRestoreHit)
		c.setAuthenticated(cached, rec.Token)
	} else {
		c.mu.Lock()
		c.user = nil
		c.token = rec.Token
		c.mu.Unlock()
	}

	go c.reconcile(optimistic, ch)

	return c.Snapshot(), nil
}

// AwaitReconcile blocks until the verification started by [Client.Restore]
// settles, then returns the settled status. It returns immediately when no
// reconciliation is in flight.
func (c *Client) AwaitReconcile(ctx context.Context) (SessionStatus, error) {
	if c == nil {
		return StatusUnknown, nil
	}
	c.mu.Lock()
	ch := c.reconcileCh
	c.mu.Unlock()

	if ch == nil {
		return c.Status(), nil
	}

	select {
	case <-ch:
		return c.Status(), nil
	case <-ctx.Done():
		return c.Status(), ctx.Err()
	}
}

// reconcile is the background confirmation of a restored session. It runs
// detached from the Restore caller's context: the belief must settle even if
// the caller moved on.
func (c *Client) reconcile(optimistic bool, ch chan struct{}) {
	ctx := context.Background()

	start := time.Now()
	profile, userJSON, err := c.gateway.Verify(ctx)
	c.metrics.Observe(MetricVerifyLatency, time.Since(start))

	switch {
	case err == nil:
		c.metricInc(MetricVerifySuccess)
		tok := c.currentToken()
		c.setAuthenticated(Profile(profile), tok)
		// Refresh the mirror with the authoritative profile.
		if werr := c.store.Write(ctx, credstore.Record{UserJSON: userJSON, Token: tok}); werr != nil {
			c.emit(ctx, EventStoreFault, false, werr)
		}

	case errors.Is(err, gateway.ErrUnauthorized):
		c.metricInc(MetricVerifyRejected)
		c.teardownLocal(ctx)
		c.emit(ctx, EventVerifyRejected, true, err)

	default:
		c.metricInc(MetricVerifyUnreachable)
		if !optimistic {
			// Expired token and no backend verdict: settle anonymous but
			// leave the store alone, the next Restore may reach the backend.
			c.setAnonymous()
		}
	}

	// Release the slot before waking AwaitReconcile callers, so their next
	// operation never collides with a slot this goroutine still holds.
	c.endOp()
	c.settleReconcile(ch)
	c.emit(ctx, EventRestoreSettled, err == nil, err)
}

func (c *Client) settleReconcile(ch chan struct{}) {
	c.mu.Lock()
	if c.reconcileCh == ch {
		c.reconcileCh = nil
	}
	c.mu.Unlock()
	close(ch)
}
