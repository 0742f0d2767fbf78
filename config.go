package goTasks

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by goTasks APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	API     APIConfig
	Store   StoreConfig
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by goTasks APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	// BaseURL is the API root every endpoint hangs off, e.g.
	// "http://localhost:8000/api".
	BaseURL string
	// Timeout bounds each request/response exchange when no custom HTTP
	// client is supplied. A timed-out operation resolves as ErrNetwork.
	Timeout time.Duration
	// UserAgent is sent on every request.
	UserAgent string
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig defines a public type used by goTasks APIs.
//
// StoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type StoreConfig struct {
	// RedisPrefix namespaces the two credential keys when the store is built
	// from a Redis client via [Builder.WithRedis].
	RedisPrefix string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goTasks APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	// InspectJWT enables the unverified expiry peek during Restore: a cached
	// token that parses as a JWT with an exp claim in the past skips the
	// optimistic authenticated belief. Opaque tokens are unaffected.
	InspectJWT bool
	// Leeway is the clock-skew allowance applied to the expiry peek.
	Leeway time.Duration
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goTasks APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking when the buffer is full.
	// Dropped counts are visible through [Client.AuditDropped].
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goTasks APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			BaseURL:   "http://localhost:8000/api",
			Timeout:   15 * time.Second,
			UserAgent: "goTasks/1.0",
		},
		Store: StoreConfig{
			RedisPrefix: "tc",
		},
		Token: TokenConfig{
			InspectJWT: true,
			Leeway:     30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values the client cannot operate
// with. It is called by [Builder.Build] before anything is constructed.
func (c *Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("config: API.BaseURL required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" {
		return errors.New("config: API.BaseURL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("config: API.BaseURL scheme must be http or https")
	}

	if c.API.Timeout < 0 || c.API.Timeout > 5*time.Minute {
		return errors.New("config: API.Timeout must be within [0, 5m]")
	}
	if c.Token.Leeway < 0 || c.Token.Leeway > 5*time.Minute {
		return errors.New("config: Token.Leeway must be within [0, 5m]")
	}
	if c.Audit.BufferSize < 0 {
		return errors.New("config: Audit.BufferSize must be >= 0")
	}
	return nil
}

// cloneConfig isolates the builder from later caller mutation. Config holds
// no reference types today, so a value copy is the whole job.
func cloneConfig(c Config) Config {
	return c
}
