package goTasks

import (
	"context"

	"github.com/MrEthical07/goTasks/credstore"
)

// Register creates an account and authenticates it in the same operation,
// mirroring Login on success. Field-level problems reported by the backend
// come back as a [*ValidationError] (errors.Is-compatible with
// [ErrValidationFailed]); everything else follows the Login error mapping.
// On any failure the session is left exactly as it was.
func (c *Client) Register(ctx context.Context, name, email, password, confirmation string) (Profile, error) {
	if err := c.beginOp(); err != nil {
		return Profile{}, err
	}
	defer c.endOp()

	res, err := c.gateway.Register(ctx, name, email, password, confirmation)
	if err != nil {
		mapped := mapGatewayErr(err)
		if _, ok := mapped.(*ValidationError); ok {
			c.metricInc(MetricRegisterValidationFailed)
		} else {
			c.metricInc(MetricRegisterFailure)
		}
		c.emit(ctx, EventRegisterFailure, false, mapped)
		return Profile{}, mapped
	}

	if werr := c.store.Write(ctx, credstore.Record{UserJSON: res.UserJSON, Token: res.Token}); werr != nil {
		c.emit(ctx, EventStoreFault, false, werr)
	}

	p := Profile(res.User)
	c.setAuthenticated(p, res.Token)
	c.metricInc(MetricRegisterSuccess)
	c.emit(ctx, EventRegisterSuccess, true, nil)
	return p, nil
}
