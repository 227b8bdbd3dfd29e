package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/internal/cleanup"
	"github.com/MrEthical07/goSession/session"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config    Config
	database  Database
	auditSink AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's configuration with a defensive copy.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithDatabase injects the authoritative backing store used by
// RefreshFromDatabase and the cleanup sweep. Optional: without it, refresh
// returns ErrDatabaseNotConfigured and cleanup attempts succeed trivially.
func (b *Builder) WithDatabase(db Database) *Builder {
	b.database = db
	return b
}

// WithAuditSink injects the audit event sink. Only consulted when
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// Build validates the configuration and constructs the [Manager], starting
// the background cleanup sweep and (when enabled) the audit dispatcher.
// A builder builds at most once.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	b.built = true

	m := &Manager{
		config:   b.config,
		store:    session.NewStore(),
		queue:    cleanup.NewQueue(),
		database: b.database,
		audit:    newAuditDispatcher(b.config.Audit, b.auditSink),
		metrics:  NewMetrics(b.config.Metrics),
	}

	m.sweeper = cleanup.NewSweeper(cleanup.Config{
		Interval:       b.config.Cleanup.Interval,
		MaxRetryCount:  b.config.Cleanup.MaxRetryCount,
		CallTimeout:    b.config.Cleanup.CallTimeout,
		DeadLetterSize: b.config.Cleanup.DeadLetterSize,
	}, m.queue, m.cleanupHooks())

	return m, nil
}
