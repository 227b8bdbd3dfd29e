package goSession

import (
	"context"
	"time"

	"github.com/MrEthical07/goSession/session"
)

// SessionStats is the externally observable statistics snapshot. It is the
// same value type the store maintains; see [session.Stats] for the
// consistency guarantees.
type SessionStats = session.Stats

// FetchResult is what the authoritative store returns for one session: the
// record plus the source version used for the optimistic commit.
type FetchResult struct {
	Record  session.Record
	Version uint64
}

// Database defines a public type used by goSession APIs.
//
// Database is the external collaborator the manager reconciles against.
// Fetch is called without any store lock held and may be slow or
// network-bound; Cleanup is the fallible external deletion the background
// sweep retries. Implementations must be safe for concurrent use.
type Database interface {
	Fetch(ctx context.Context, sessionID string) (FetchResult, error)
	Cleanup(ctx context.Context, sessionID string) error
}

// RefreshOutcome defines a public type used by goSession APIs.
//
// RefreshOutcome reports what a RefreshFromDatabase call did. Stale is an
// expected outcome, not an error: the fetched data was not newer than the
// cached entry, so nothing was applied and the caller decides whether to
// retry.
type RefreshOutcome int

const (
	// RefreshApplied is an exported constant or variable used by the session manager.
	RefreshApplied RefreshOutcome = iota
	// RefreshStale is an exported constant or variable used by the session manager.
	RefreshStale
)

func (o RefreshOutcome) String() string {
	switch o {
	case RefreshApplied:
		return "applied"
	case RefreshStale:
		return "stale"
	default:
		return "unknown"
	}
}

// DeadLetter records a cleanup item retired after exhausting its retry
// budget. Retired items are dropped from the live queue, retained in a
// bounded list for inspection, and emitted on the audit stream.
type DeadLetter struct {
	SessionID string
	Retries   uint32
	LastError string
	RetiredAt time.Time
}
