// Package metrics exposes Prometheus instrumentation for the sink pipeline.
// Metrics are global with no unbounded label cardinality.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// EventsSubmitted counts events accepted by Sink.Submit
	EventsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logtide_events_submitted_total",
		Help: "Total events accepted into the pending queue",
	})

	// RecordsWritten counts records persisted to the table backend
	RecordsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logtide_records_written_total",
		Help: "Total records written to the table backend",
	})

	// BatchesWritten counts successful sub-batch backend calls
	BatchesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logtide_batches_written_total",
		Help: "Total sub-batches written to the table backend",
	})

	// WriteFailures counts failed sub-batch backend calls
	WriteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logtide_write_failures_total",
		Help: "Total sub-batch backend calls that failed",
	})

	// EventsRequeued counts events pushed back to the queue after a failed cycle
	EventsRequeued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "logtide_events_requeued_total",
		Help: "Total events returned to the pending queue after a write failure",
	})

	// PendingEvents tracks the current pending queue length
	PendingEvents = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "logtide_pending_events",
		Help: "Events currently buffered in the pending queue",
	})

	// FlushDuration observes the wall time of one flush cycle
	FlushDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "logtide_flush_duration_seconds",
		Help:    "Duration of flush cycles including backend writes",
		Buckets: prometheus.DefBuckets,
	})

	// RecordsPerBatch observes sub-batch sizes
	RecordsPerBatch = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "logtide_records_per_batch",
		Help:    "Distribution of records per sub-batch",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100},
	})
)

func init() {
	prometheus.MustRegister(
		EventsSubmitted,
		RecordsWritten,
		BatchesWritten,
		WriteFailures,
		EventsRequeued,
		PendingEvents,
		FlushDuration,
		RecordsPerBatch,
	)
}
