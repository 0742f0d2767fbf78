package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxBodyBytes bounds how much of any response body is read.
const maxBodyBytes = 1 << 20

// TokenSource yields the bearer token to attach to outgoing requests, or ""
// when none is held.
type TokenSource func() string

// Options configures a gateway Client.
type Options struct {
	// BaseURL is the API root, e.g. "http://localhost:8000/api".
	BaseURL string
	// HTTPClient overrides the transport. When nil a client with Timeout is
	// used.
	HTTPClient *http.Client
	// Token supplies the current bearer token. Required.
	Token TokenSource
	// UserAgent is sent on every request.
	UserAgent string
	// Timeout applies when HTTPClient is nil.
	Timeout time.Duration
}

// Client is the HTTP gateway to the task backend.
type Client struct {
	baseURL   string
	http      *http.Client
	token     TokenSource
	userAgent string
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("gateway: base URL required")
	}
	if opts.Token == nil {
		return nil, errors.New("gateway: token source required")
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:   base,
		http:      hc,
		token:     opts.Token,
		userAgent: opts.UserAgent,
	}, nil
}

// do runs one request/response exchange with the current token. A 2xx body is
// decoded into out when out is non-nil. Failures come back as *httpError for
// backend verdicts or an ErrTransport-wrapped error for everything else.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.doToken(ctx, method, path, c.token(), body, out)
}

// doToken is do with an explicit bearer token. Logout uses it to notify the
// backend with a token the session layer has already discarded locally.
func (c *Client) doToken(ctx context.Context, method, path, tok string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", ErrTransport, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(data) == 0 {
			return nil
		}
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: decode response: %v", ErrTransport, err)
		}
		return nil
	}

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: backend returned %d", ErrTransport, resp.StatusCode)
	}

	var env errorEnvelope
	_ = json.Unmarshal(data, &env)
	return &httpError{
		Status:  resp.StatusCode,
		Message: env.message(),
		Fields:  env.fields(),
	}
}

// asHTTPError extracts the backend verdict from err, if there is one.
func asHTTPError(err error) (*httpError, bool) {
	var he *httpError
	if errors.As(err, &he) {
		return he, true
	}
	return nil, false
}
