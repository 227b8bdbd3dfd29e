package goSession

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goSession/internal/cleanup"
	"github.com/MrEthical07/goSession/session"
	"github.com/google/uuid"
)

// Manager defines a public type used by goSession APIs.
//
// Manager instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
//
// The Manager is the façade over the three lock-protected structures: the
// session store (which owns the stats counters in its own critical
// section), and the cleanup queue. It is constructed once through
// [Builder.Build] and shared by handle across all call sites; there is no
// package-level singleton.
type Manager struct {
	config   Config
	store    *session.Store
	queue    *cleanup.Queue
	sweeper  *cleanup.Sweeper
	database Database
	audit    *auditDispatcher
	metrics  *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close stops the background sweep and the audit dispatcher. Pending queue
// items stay queued; in-flight external calls finish or are abandoned, but
// the queue is left consistent. Manager operations remain usable after
// Close; only background work stops. Safe to call more than once.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.sweeper != nil {
		m.sweeper.Close()
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

// CreateSession allocates a fresh collision-resistant session id, inserts
// the new record at version 0, and increments the active-session counter in
// the same critical section as the insert. The caller gets the new id.
//
// ErrDuplicateSessionID is practically unreachable with UUIDv4 ids; callers
// that see it should retry, which allocates a new id.
func (m *Manager) CreateSession(ctx context.Context, userID, username string) (string, error) {
	if userID == "" || username == "" {
		return "", fmt.Errorf("%w: user id and username must be non-empty", ErrInvalidSessionInput)
	}

	sessionID := uuid.NewString()
	now := time.Now()
	rec := session.Record{
		SessionID:       sessionID,
		UserID:          userID,
		Username:        username,
		IsAuthenticated: true,
		Metadata:        map[string]string{},
		LoginTime:       now,
		LastActivity:    now,
	}

	if !m.store.Insert(sessionID, rec, now) {
		m.metricInc(MetricDuplicateSessionID)
		return "", ErrDuplicateSessionID
	}

	m.metricInc(MetricSessionCreated)
	m.auditEmit(ctx, AuditEvent{
		EventType: auditEventSessionCreated,
		SessionID: sessionID,
		UserID:    userID,
		Success:   true,
	})

	return sessionID, nil
}

// GetSession returns an owned copy of the current record. The cache hit or
// miss is counted inside the same lock acquisition as the lookup, so the
// counters can never disagree with what the caller actually observed.
func (m *Manager) GetSession(ctx context.Context, sessionID string) (session.Record, error) {
	rec, ok := m.store.Get(sessionID)
	if !ok {
		m.metricInc(MetricCacheMiss)
		return session.Record{}, ErrSessionNotFound
	}
	m.metricInc(MetricCacheHit)
	return rec, nil
}

// UpdateSession upserts one metadata key. The mutation closure runs inside
// the store's held write section against the live entry; under N concurrent
// callers with distinct keys, all N land.
func (m *Manager) UpdateSession(ctx context.Context, sessionID, key, value string) error {
	ok := m.store.WithMut(sessionID, time.Now(), func(r *session.Record) {
		if r.Metadata == nil {
			r.Metadata = make(map[string]string)
		}
		r.Metadata[key] = value
		r.LastActivity = time.Now()
	})
	if !ok {
		return ErrSessionNotFound
	}
	m.metricInc(MetricUpdateApplied)
	return nil
}

// IncrementAccess bumps the access counter by one inside the held write
// section. N concurrent calls yield exactly N.
func (m *Manager) IncrementAccess(ctx context.Context, sessionID string) error {
	ok := m.store.WithMut(sessionID, time.Now(), func(r *session.Record) {
		r.AccessCount++
		r.LastActivity = time.Now()
	})
	if !ok {
		return ErrSessionNotFound
	}
	m.metricInc(MetricAccessIncremented)
	return nil
}

// RefreshFromDatabase reconciles the cached entry against the authoritative
// store. The fetch runs with no store lock held (bounded by the configured
// fetch timeout); the fetched data is applied at commit time only if its
// version is strictly newer than the cached one. A discarded fetch returns
// [RefreshStale], which is an outcome, not an error.
func (m *Manager) RefreshFromDatabase(ctx context.Context, sessionID string) (RefreshOutcome, error) {
	if m.database == nil {
		return RefreshStale, ErrDatabaseNotConfigured
	}
	if !m.store.Contains(sessionID) {
		return RefreshStale, ErrSessionNotFound
	}

	fetchCtx := ctx
	if m.config.Fetch.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, m.config.Fetch.Timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := m.database.Fetch(fetchCtx, sessionID)
	if m.metrics != nil {
		m.metrics.Observe(MetricFetchLatency, time.Since(start))
	}
	if err != nil {
		m.metricInc(MetricRefreshFetchFailed)
		m.auditEmit(ctx, AuditEvent{
			EventType: auditEventRefreshFetchFailed,
			SessionID: sessionID,
			Error:     err.Error(),
		})
		return RefreshStale, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	applied, ok := m.store.CommitRefresh(sessionID, result.Record, result.Version, time.Now())
	if !ok {
		// Deleted while the fetch was in flight.
		return RefreshStale, ErrSessionNotFound
	}
	if !applied {
		m.metricInc(MetricRefreshStale)
		m.auditEmit(ctx, AuditEvent{
			EventType: auditEventRefreshStale,
			SessionID: sessionID,
			Success:   true,
		})
		return RefreshStale, nil
	}

	m.metricInc(MetricRefreshApplied)
	m.auditEmit(ctx, AuditEvent{
		EventType: auditEventRefreshApplied,
		SessionID: sessionID,
		Success:   true,
	})
	return RefreshApplied, nil
}

// DeleteSession removes the entry, decrements the active-session counter,
// and enqueues the id for external cleanup as one atomic unit: the enqueue
// runs before the store's critical section is released (fixed acquisition
// order store → stats → queue), so there is no observable state where the
// session is absent but still counted, or uncounted but not yet queued.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string) error {
	now := time.Now()
	entry, ok := m.store.Remove(sessionID, func(session.Entry) {
		m.queue.Enqueue(sessionID, now)
	})
	if !ok {
		return ErrSessionNotFound
	}

	m.metricInc(MetricSessionDeleted)
	m.auditEmit(ctx, AuditEvent{
		EventType: auditEventSessionDeleted,
		SessionID: sessionID,
		UserID:    entry.Data.UserID,
		Success:   true,
	})
	return nil
}

// RunCleanup performs one synchronous sweep pass over the cleanup queue:
// one external cleanup attempt per pending item, retries counted, items
// retired at the configured budget. The background loop calls this on its
// interval; hosts and tests may call it directly for deterministic sweeps.
func (m *Manager) RunCleanup(ctx context.Context) {
	if m == nil || m.sweeper == nil {
		return
	}
	m.sweeper.RunOnce(ctx)
}

// GetStats returns a copy of the statistics counters. ActiveSessions in the
// returned snapshot equals the store cardinality at the moment the snapshot
// was taken.
func (m *Manager) GetStats() SessionStats {
	return m.store.Stats()
}

// GetActiveCount returns the exact live session count.
func (m *Manager) GetActiveCount() uint64 {
	return uint64(m.store.Len())
}

// GetCleanupQueueSize returns the number of pending external deletions.
func (m *Manager) GetCleanupQueueSize() int {
	return m.queue.Size()
}

// DeadLetters returns the retained cleanup items that exhausted their retry
// budget, oldest first.
func (m *Manager) DeadLetters() []DeadLetter {
	if m == nil || m.sweeper == nil {
		return nil
	}
	letters := m.sweeper.DeadLetters()
	out := make([]DeadLetter, len(letters))
	for i, l := range letters {
		out[i] = DeadLetter(l)
	}
	return out
}

// AuditDropped reports audit events dropped due to dispatcher backpressure.
func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

// MetricsSnapshot returns a copy of all metric counters and histograms.
func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) cleanupHooks() cleanup.Hooks {
	return cleanup.Hooks{
		Cleanup: func(ctx context.Context, sessionID string) error {
			if m.database == nil {
				return nil
			}
			if err := m.database.Cleanup(ctx, sessionID); err != nil {
				return fmt.Errorf("%w: %v", ErrCleanupFailed, err)
			}
			return nil
		},
		OnSuccess: func(sessionID string) {
			m.metricInc(MetricCleanupSuccess)
			m.auditEmit(context.Background(), AuditEvent{
				EventType: auditEventCleanupSuccess,
				SessionID: sessionID,
				Success:   true,
			})
		},
		OnFailure: func(sessionID string, retries uint32, err error) {
			m.store.IncFailedCleanups()
			m.metricInc(MetricCleanupFailure)
			m.auditEmit(context.Background(), AuditEvent{
				EventType:  auditEventCleanupFailure,
				SessionID:  sessionID,
				RetryCount: retries,
				Error:      err.Error(),
			})
		},
		OnDeadLetter: func(letter cleanup.DeadLetter) {
			m.metricInc(MetricCleanupDeadLetter)
			m.auditEmit(context.Background(), AuditEvent{
				EventType:  auditEventCleanupDeadLetter,
				SessionID:  letter.SessionID,
				RetryCount: letter.Retries,
				Error:      letter.LastError,
			})
		},
	}
}
