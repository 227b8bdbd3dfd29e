package internaldefs

import (
	goSession "github.com/MrEthical07/goSession"
)

// CounterDef defines a public type used by goSession APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// HistogramDef defines a public type used by goSession APIs.
//
// HistogramDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HistogramDef struct {
	ID   goSession.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the session manager.
var CounterDefs = []CounterDef{
	{ID: goSession.MetricSessionCreated, Name: "gosession_session_created_total", Help: "Created sessions."},
	{ID: goSession.MetricSessionDeleted, Name: "gosession_session_deleted_total", Help: "Deleted sessions."},
	{ID: goSession.MetricDuplicateSessionID, Name: "gosession_duplicate_session_id_total", Help: "Session creations rejected because the id already existed."},
	{ID: goSession.MetricCacheHit, Name: "gosession_cache_hit_total", Help: "Session lookups that found a cached entry."},
	{ID: goSession.MetricCacheMiss, Name: "gosession_cache_miss_total", Help: "Session lookups that found no cached entry."},
	{ID: goSession.MetricUpdateApplied, Name: "gosession_update_applied_total", Help: "Applied metadata updates."},
	{ID: goSession.MetricAccessIncremented, Name: "gosession_access_incremented_total", Help: "Applied access-count increments."},
	{ID: goSession.MetricRefreshApplied, Name: "gosession_refresh_applied_total", Help: "Refreshes whose fetched data was committed."},
	{ID: goSession.MetricRefreshStale, Name: "gosession_refresh_stale_total", Help: "Refreshes whose fetched data was discarded as stale."},
	{ID: goSession.MetricRefreshFetchFailed, Name: "gosession_refresh_fetch_failed_total", Help: "Refreshes that failed at the backing-store fetch."},
	{ID: goSession.MetricCleanupSuccess, Name: "gosession_cleanup_success_total", Help: "Successful external cleanup attempts."},
	{ID: goSession.MetricCleanupFailure, Name: "gosession_cleanup_failure_total", Help: "Failed external cleanup attempts."},
	{ID: goSession.MetricCleanupDeadLetter, Name: "gosession_cleanup_dead_letter_total", Help: "Cleanup items retired after exhausting their retry budget."},
	{ID: goSession.MetricTokenIssued, Name: "gosession_token_issued_total", Help: "Issued session-reference tokens."},
	{ID: goSession.MetricTokenRejected, Name: "gosession_token_rejected_total", Help: "Rejected session-reference tokens."},
}

// HistogramDefs is an exported constant or variable used by the session manager.
var HistogramDefs = []HistogramDef{
	{ID: goSession.MetricFetchLatency, Name: "gosession_fetch_latency_seconds", Help: "Backing-store fetch latency histogram."},
}

// HistogramBounds is an exported constant or variable used by the session manager.
var HistogramBounds = []float64{
	0.005,
	0.01,
	0.025,
	0.05,
	0.1,
	0.25,
	0.5,
}

// NormalizeBuckets describes the normalizebuckets operation and its observable behavior.
//
// NormalizeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets describes the cumulativebuckets operation and its observable behavior.
//
// CumulativeBuckets does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
