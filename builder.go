package goTasks

import (
	"errors"
	"net/http"
	"time"

	"github.com/MrEthical07/goTasks/credstore"
	internalaudit "github.com/MrEthical07/goTasks/internal/audit"
	"github.com/MrEthical07/goTasks/internal/gateway"
	"github.com/redis/go-redis/v9"
)

// Builder defines a public type used by goTasks APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config     Config
	store      credstore.Store
	redis      redis.UniversalClient
	httpClient *http.Client
	auditSink  AuditSink

	built bool
}

// New creates a Builder seeded with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL overrides the API root.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithTimeout overrides the per-request timeout used when no custom HTTP
// client is supplied.
func (b *Builder) WithTimeout(d time.Duration) *Builder {
	b.config.API.Timeout = d
	return b
}

// WithHTTPClient overrides the transport, e.g. for proxies or test servers.
func (b *Builder) WithHTTPClient(hc *http.Client) *Builder {
	b.httpClient = hc
	return b
}

// WithStore supplies the persisted credential store. Takes precedence over
// WithRedis.
func (b *Builder) WithStore(s credstore.Store) *Builder {
	b.store = s
	return b
}

// WithRedis supplies a Redis client from which a credential store is built
// under [StoreConfig.RedisPrefix].
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink supplies the diagnostic sink and enables auditing.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = sink != nil
	return b
}

// WithMetricsEnabled toggles the in-process metrics counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and constructs the Client. A Builder can
// build at most once.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := b.store
	if store == nil && b.redis != nil {
		store = credstore.NewRedis(b.redis, cfg.Store.RedisPrefix)
	}
	if store == nil {
		store = credstore.NewMemory()
	}

	c := &Client{
		config:  cfg,
		store:   store,
		status:  StatusUnknown,
		metrics: NewMetrics(cfg.Metrics),
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    cfg.Audit.Enabled,
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink),
	}

	gw, err := gateway.New(gateway.Options{
		BaseURL:    cfg.API.BaseURL,
		HTTPClient: b.httpClient,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.API.UserAgent,
		Token:      c.currentToken,
	})
	if err != nil {
		c.audit.Close()
		return nil, err
	}
	c.gateway = gw

	b.built = true
	return c, nil
}
