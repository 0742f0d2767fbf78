package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Profile is the gateway-local user model decoded off the wire.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// AuthResult is the outcome of a successful login or registration. UserJSON
// is the user object exactly as the backend sent it, preserved for the
// credential store so fields the client does not model survive a round-trip.
type AuthResult struct {
	User     Profile
	UserJSON json.RawMessage
	Token    string
}

// authEnvelope mirrors the login/register success body.
type authEnvelope struct {
	User  json.RawMessage `json:"user"`
	Token string          `json:"access_token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// Login exchanges credentials for a profile and bearer token. Invalid
// credentials map to ErrUnauthorized regardless of whether the backend
// reports them as 401 or 422; everything else is ErrTransport.
func (c *Client) Login(ctx context.Context, email, password string) (AuthResult, error) {
	var env authEnvelope
	err := c.do(ctx, http.MethodPost, "/login", loginRequest{Email: email, Password: password}, &env)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			if he.Status == http.StatusUnauthorized || he.Status == http.StatusUnprocessableEntity {
				return AuthResult{}, fmt.Errorf("%w: %s", ErrUnauthorized, nonEmpty(he.Message, "invalid credentials"))
			}
			return AuthResult{}, fmt.Errorf("%w: %v", ErrTransport, he)
		}
		return AuthResult{}, err
	}
	return decodeAuthResult(env)
}

// Register creates an account and authenticates it in the same exchange.
// Field-level problems map to *ValidationError; everything else follows the
// Login mapping.
func (c *Client) Register(ctx context.Context, name, email, password, confirmation string) (AuthResult, error) {
	req := registerRequest{
		Name:                 name,
		Email:                email,
		Password:             password,
		PasswordConfirmation: confirmation,
	}

	var env authEnvelope
	err := c.do(ctx, http.MethodPost, "/register", req, &env)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			if len(he.Fields) > 0 {
				return AuthResult{}, &ValidationError{Fields: he.Fields}
			}
			if he.Status == http.StatusUnauthorized {
				return AuthResult{}, fmt.Errorf("%w: %s", ErrUnauthorized, nonEmpty(he.Message, "registration rejected"))
			}
			return AuthResult{}, fmt.Errorf("%w: %v", ErrTransport, he)
		}
		return AuthResult{}, err
	}
	return decodeAuthResult(env)
}

// Logout posts the best-effort invalidation notice with the current token.
// The caller tears the session down regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.LogoutWithToken(ctx, c.token())
}

// LogoutWithToken posts the invalidation notice with an explicit token, for
// callers that discard the token locally before notifying the backend.
func (c *Client) LogoutWithToken(ctx context.Context, tok string) error {
	err := c.doToken(ctx, http.MethodPost, "/logout", tok, nil, nil)
	if err == nil {
		return nil
	}
	if he, ok := asHTTPError(err); ok {
		if he.Status == http.StatusUnauthorized {
			return fmt.Errorf("%w: %s", ErrUnauthorized, nonEmpty(he.Message, "token already invalid"))
		}
		return fmt.Errorf("%w: %v", ErrTransport, he)
	}
	return err
}

// Verify asks the backend whether the held token is still good and returns
// the authoritative profile.
func (c *Client) Verify(ctx context.Context) (Profile, json.RawMessage, error) {
	var raw json.RawMessage
	err := c.do(ctx, http.MethodGet, "/user", nil, &raw)
	if err != nil {
		if he, ok := asHTTPError(err); ok {
			if he.Status == http.StatusUnauthorized {
				return Profile{}, nil, fmt.Errorf("%w: %s", ErrUnauthorized, nonEmpty(he.Message, "token rejected"))
			}
			return Profile{}, nil, fmt.Errorf("%w: %v", ErrTransport, he)
		}
		return Profile{}, nil, err
	}

	// Some backends wrap the profile as {"user": {...}}.
	var wrapped struct {
		User json.RawMessage `json:"user"`
	}
	if json.Unmarshal(raw, &wrapped) == nil && len(wrapped.User) > 0 {
		raw = wrapped.User
	}

	var p Profile
	if err := json.Unmarshal(raw, &p); err != nil || p.ID == 0 {
		return Profile{}, nil, fmt.Errorf("%w: decode profile", ErrTransport)
	}
	return p, raw, nil
}

func decodeAuthResult(env authEnvelope) (AuthResult, error) {
	if len(env.User) == 0 || env.Token == "" {
		return AuthResult{}, fmt.Errorf("%w: incomplete auth response", ErrTransport)
	}
	var p Profile
	if err := json.Unmarshal(env.User, &p); err != nil {
		return AuthResult{}, fmt.Errorf("%w: decode profile: %v", ErrTransport, err)
	}
	return AuthResult{User: p, UserJSON: env.User, Token: env.Token}, nil
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
