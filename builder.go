package authclient

import (
	"errors"

	"github.com/HugoQuintal01/pocketbase-login-use-case/session"
)

// Builder assembles a [Client]. Configure it during initialization; Build
// consumes it and may be called once.
type Builder struct {
	config  Config
	backend Backend

	auditSink AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBackend sets the identity backend. Required.
func (b *Builder) WithBackend(backend Backend) *Builder {
	b.backend = backend
	return b
}

// WithAuditSink sets the sink the audit dispatcher forwards to. Enabling
// audit without a sink silently discards events.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles counter recording.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, takes the single backend session
// subscription, and returns the ready client. The session store's Current
// is valid as soon as Build returns.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.backend == nil {
		return nil, ErrBackendRequired
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:  cfg,
		backend: b.backend,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	c.sessions = session.NewStore(b.backend)
	c.releaseWatch = c.sessions.Subscribe(c.onSessionChange)

	b.built = true

	return c, nil
}
