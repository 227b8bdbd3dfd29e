package goSession

import (
	"context"
	"time"
)

const (
	auditEventSessionCreated     = "session_created"
	auditEventSessionDeleted     = "session_deleted"
	auditEventRefreshApplied     = "refresh_applied"
	auditEventRefreshStale       = "refresh_stale"
	auditEventRefreshFetchFailed = "refresh_fetch_failed"
	auditEventCleanupSuccess     = "cleanup_success"
	auditEventCleanupFailure     = "cleanup_failure"
	auditEventCleanupDeadLetter  = "cleanup_dead_letter"
)

func (m *Manager) auditEmit(ctx context.Context, event AuditEvent) {
	if m == nil || m.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.RequestID == "" {
		event.RequestID = requestIDFromContext(ctx)
	}
	m.audit.Emit(ctx, event)
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}
