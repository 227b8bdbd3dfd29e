package prometheus

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/metrics/export/internaldefs"
)

type metricsSource interface {
	MetricsSnapshot() goSession.MetricsSnapshot
	AuditDropped() uint64
}

// Exporter implements prometheus.Collector over goSession metric snapshots.
// Collection is a point-in-time read of the manager's atomic counters; the
// collector holds no state of its own.
//
//	Docs: docs/metrics.md
type Exporter struct {
	source       metricsSource
	counterDescs map[goSession.MetricID]*prometheus.Desc
	histDescs    map[goSession.MetricID]*prometheus.Desc
	droppedDesc  *prometheus.Desc
}

var _ prometheus.Collector = (*Exporter)(nil)

// NewCollector creates a collector that reads from the given [goSession.Manager].
//
//	Docs: docs/metrics.md
func NewCollector(manager *goSession.Manager) *Exporter {
	return NewCollectorFromSource(manager)
}

// NewCollectorFromSource creates a collector from a custom metrics source.
//
//	Docs: docs/metrics.md
func NewCollectorFromSource(source metricsSource) *Exporter {
	e := &Exporter{
		source:       source,
		counterDescs: make(map[goSession.MetricID]*prometheus.Desc, len(internaldefs.CounterDefs)),
		histDescs:    make(map[goSession.MetricID]*prometheus.Desc, len(internaldefs.HistogramDefs)),
		droppedDesc: prometheus.NewDesc(
			"gosession_audit_dropped_total",
			"Dropped audit events due to dispatcher backpressure.",
			nil, nil),
	}
	for _, def := range internaldefs.CounterDefs {
		e.counterDescs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	for _, def := range internaldefs.HistogramDefs {
		e.histDescs[def.ID] = prometheus.NewDesc(def.Name, def.Help, nil, nil)
	}
	return e
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, def := range internaldefs.CounterDefs {
		ch <- e.counterDescs[def.ID]
	}
	for _, def := range internaldefs.HistogramDefs {
		ch <- e.histDescs[def.ID]
	}
	ch <- e.droppedDesc
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	if e == nil || e.source == nil {
		return
	}

	snapshot := e.source.MetricsSnapshot()

	for _, def := range internaldefs.CounterDefs {
		ch <- prometheus.MustNewConstMetric(
			e.counterDescs[def.ID],
			prometheus.CounterValue,
			float64(snapshot.Counters[def.ID]))
	}

	for _, def := range internaldefs.HistogramDefs {
		cumulative := internaldefs.CumulativeBuckets(
			internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID]))

		buckets := make(map[float64]uint64, len(internaldefs.HistogramBounds))
		for i, le := range internaldefs.HistogramBounds {
			buckets[le] = cumulative[i]
		}
		count := cumulative[len(cumulative)-1]

		// Sum is not available in core snapshots; exposed as 0.
		ch <- prometheus.MustNewConstHistogram(
			e.histDescs[def.ID], count, 0, buckets)
	}

	ch <- prometheus.MustNewConstMetric(
		e.droppedDesc, prometheus.CounterValue, float64(e.source.AuditDropped()))
}

// Handler returns an http.Handler serving this collector from a private
// registry.
//
//	Docs: docs/metrics.md
func (e *Exporter) Handler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(e)
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
