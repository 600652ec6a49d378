// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome and status label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"

	StatusClassified = "classified"
	StatusFallback   = "fallback"
)

var (
	ClassifierCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_calls_total",
			Help: "Total number of remote model calls by outcome",
		},
		[]string{"task_type", "outcome", "error_code"},
	)

	ClassifierCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_call_duration_seconds",
			Help:    "Duration of a single remote model call in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		},
		[]string{"task_type"},
	)

	ClassifierCallsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "classifier_calls_in_flight",
			Help: "Number of limiter slots currently held",
		},
	)

	ClassifierRetries = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "classifier_retries_total",
			Help: "Total number of repeated attempts after a failed call",
		},
	)

	ClassifierItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_items_total",
			Help: "Total number of batch items resolved, by status",
		},
		[]string{"status"},
	)
)
