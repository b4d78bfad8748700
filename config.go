package authclient

import (
	"errors"
	"time"
)

// Config tunes the client. Configure during initialization and treat as
// immutable afterwards; Build clones it.
type Config struct {
	Routes  RoutesConfig
	Network NetworkConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

// RoutesConfig names the two entry points the route guard redirects to.
type RoutesConfig struct {
	// AnonymousEntry is where signed-out users land (the sign-in screen).
	AnonymousEntry string
	// AuthenticatedEntry is where signed-in users land.
	AuthenticatedEntry string
}

// NetworkConfig bounds backend calls. The adapter owns the transport-level
// timeout; this one is the client's backstop so no operation can block a
// caller indefinitely.
type NetworkConfig struct {
	Timeout time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process metrics system.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		Routes: RoutesConfig{
			AnonymousEntry:     "/",
			AuthenticatedEntry: "/dashboard",
		},
		Network: NetworkConfig{
			Timeout: 15 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}

// DefaultConfig returns the defaults Build starts from: entry points "/" and
// "/dashboard", a 15s network backstop, audit and metrics disabled.
func DefaultConfig() Config {
	return defaultConfig()
}

func cloneConfig(cfg Config) Config {
	// All fields are values; assignment is a deep copy.
	return cfg
}

// Validate rejects configurations the client cannot operate under.
func (c Config) Validate() error {
	if c.Routes.AnonymousEntry == "" {
		return errors.New("routes: anonymous entry path required")
	}
	if c.Routes.AuthenticatedEntry == "" {
		return errors.New("routes: authenticated entry path required")
	}
	if c.Routes.AnonymousEntry == c.Routes.AuthenticatedEntry {
		return errors.New("routes: entry paths must differ")
	}
	if c.Network.Timeout <= 0 {
		return errors.New("network: timeout must be positive")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit: buffer size must not be negative")
	}
	return nil
}
