// Package prometheus provides a Prometheus collector for goSession metrics.
//
// [NewCollector] accepts a [goSession.Manager] and implements
// prometheus.Collector over its metric snapshots. Counter names are prefixed
// gosession_*_total; the single histogram is gosession_fetch_latency_seconds.
//
// # What this package must NOT do
//
//   - Register in the global Prometheus registry — callers register the
//     collector or mount [Exporter.Handler].
//   - Mutate manager state.
package prometheus
