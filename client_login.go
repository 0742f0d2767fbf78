package goTasks

import (
	"context"

	"github.com/MrEthical07/goTasks/credstore"
)

// Login exchanges credentials for an authenticated session. On success the
// credential record is persisted before the in-memory transition, so a
// returned nil error implies the store already mirrors the session. On
// failure the session is left exactly as it was and the typed failure
// ([ErrAuthRejected] or [ErrNetwork]) is returned for display.
//
// The session status never reflects a login still in flight; observers see
// the previous settled state until the call resolves.
func (c *Client) Login(ctx context.Context, email, password string) (Profile, error) {
	if err := c.beginOp(); err != nil {
		return Profile{}, err
	}
	defer c.endOp()

	res, err := c.gateway.Login(ctx, email, password)
	if err != nil {
		mapped := mapGatewayErr(err)
		c.metricInc(MetricLoginFailure)
		c.emit(ctx, EventLoginFailure, false, mapped)
		return Profile{}, mapped
	}

	if werr := c.store.Write(ctx, credstore.Record{UserJSON: res.UserJSON, Token: res.Token}); werr != nil {
		// The session is still good; only the durable mirror is degraded.
		c.emit(ctx, EventStoreFault, false, werr)
	}

	p := Profile(res.User)
	c.setAuthenticated(p, res.Token)
	c.metricInc(MetricLoginSuccess)
	c.emit(ctx, EventLoginSuccess, true, nil)
	return p, nil
}
