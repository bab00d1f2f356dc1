// Package metrics holds the Prometheus collectors for generation calls and jobs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "syllabook"

var (
	GenerationCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "calls_total",
			Help:      "Total number of generation API calls",
		},
		[]string{"part", "status"}, // status: ok, retryable, failed or malformed
	)

	GenerationCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generation",
			Name:      "call_duration_seconds",
			Help:      "Generation API call duration in seconds",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"part"},
	)

	TopicsGeneratedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "topics_generated_total",
			Help:      "Topics whose sections were fully generated",
		},
	)

	BooksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "books_total",
			Help:      "Pipeline runs by outcome",
		},
		[]string{"status"}, // completed/failed
	)

	JobQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "jobs",
			Name:      "queue_depth",
			Help:      "Jobs waiting for a worker",
		},
	)
)
