package goSession

import (
	"errors"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Cleanup CleanupConfig
	Fetch   FetchConfig
	Token   TokenConfig
	Audit   AuditConfig
	Metrics MetricsConfig
}

/*
====================================
CLEANUP CONFIG
====================================
*/

// CleanupConfig defines a public type used by goSession APIs.
//
// CleanupConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CleanupConfig struct {
	// Interval between background sweep passes.
	Interval time.Duration
	// MaxRetryCount bounds how many failed sweeps an item survives before
	// it is dead-lettered. Queue size is therefore bounded by
	// deletion rate × MaxRetryCount × Interval, never by total history.
	MaxRetryCount uint32
	// CallTimeout bounds each external cleanup call.
	CallTimeout time.Duration
	// DeadLetterSize caps the retained dead-letter list.
	DeadLetterSize int
}

/*
====================================
FETCH CONFIG
====================================
*/

// FetchConfig defines a public type used by goSession APIs.
//
// FetchConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type FetchConfig struct {
	// Timeout bounds each database fetch during RefreshFromDatabase. A
	// timed-out fetch is a failed fetch; no store mutation is attempted.
	Timeout time.Duration
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig defines a public type used by goSession APIs.
//
// TokenConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenConfig struct {
	Enabled    bool
	SigningKey []byte
	TTL        time.Duration
	Issuer     string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the baseline configuration. Callers adjust fields
// and pass the result to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Cleanup: CleanupConfig{
			Interval:       5 * time.Minute,
			MaxRetryCount:  5,
			CallTimeout:    5 * time.Second,
			DeadLetterSize: 256,
		},
		Fetch: FetchConfig{
			Timeout: 3 * time.Second,
		},
		Token: TokenConfig{
			Enabled: false,
			TTL:     15 * time.Minute,
			Issuer:  "goSession",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Token.SigningKey != nil {
		out.Token.SigningKey = make([]byte, len(cfg.Token.SigningKey))
		copy(out.Token.SigningKey, cfg.Token.SigningKey)
	}
	return out
}

func validateConfig(cfg Config) error {
	if cfg.Cleanup.Interval <= 0 {
		return errors.New("cleanup interval must be positive")
	}
	if cfg.Cleanup.MaxRetryCount == 0 {
		return errors.New("cleanup max retry count must be at least 1")
	}
	if cfg.Cleanup.DeadLetterSize < 0 {
		return errors.New("cleanup dead letter size must not be negative")
	}
	if cfg.Fetch.Timeout < 0 {
		return errors.New("fetch timeout must not be negative")
	}
	if cfg.Token.Enabled {
		if len(cfg.Token.SigningKey) < 32 {
			return errors.New("token signing key must be at least 32 bytes")
		}
		if cfg.Token.TTL <= 0 {
			return errors.New("token ttl must be positive")
		}
	}
	if cfg.Audit.Enabled && cfg.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	return nil
}
