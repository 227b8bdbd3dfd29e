// Package goSession provides a concurrent, versioned session-state store:
// an in-process service that holds short-lived per-user session records,
// supports concurrent read/modify/write from many request-handling
// goroutines, reconciles cached state against an authoritative backing
// store with optimistic concurrency, and reclaims deleted sessions through
// a bounded-retry background sweep.
//
// The package is designed for concurrent server workloads: Manager methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Manager], [Builder],
// [Config], the [Database] collaborator contract, and value types
// (SessionStats, MetricsSnapshot, DeadLetter). The store itself lives in
// the session subpackage; queue and sweep coordination live under
// internal/ and are never exported.
//
// # What this package must NOT do
//
//   - Hand out references into the live store; every accessor returns an
//     owned copy.
//   - Perform I/O while holding a store lock. External fetch and cleanup
//     calls always run outside the critical sections.
//   - Import any sub-package that re-imports goSession (no import cycles).
//
// # Consistency contract
//
// GetStats().ActiveSessions equals the live store cardinality at every
// observable point: each transition that changes one changes the other in
// the same critical section. DeleteSession removes the entry, adjusts the
// counters, and enqueues external cleanup as one atomic unit.
package goSession
