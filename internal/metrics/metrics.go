// Package metrics exposes Prometheus instrumentation for the validation
// pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "validations_total",
			Help: "Total number of completed validations by outcome",
		},
		[]string{"outcome"},
	)

	providerCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_provider_calls_total",
			Help: "Total number of LLM provider calls by provider and status",
		},
		[]string{"provider", "status"},
	)

	providerCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_provider_call_duration_seconds",
			Help:    "LLM provider call duration in seconds",
			Buckets: []float64{.25, .5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"provider"},
	)

	fallbackExhaustedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "llm_fallback_exhausted_total",
			Help: "Total number of validations where every provider failed",
		},
	)

	auditEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "validation_audit_entries_total",
			Help: "Total number of validation attempt audit rows written",
		},
	)

	auditFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "validation_audit_failures_total",
			Help: "Total number of swallowed audit-log write failures",
		},
	)
)

// RecordValidation records a completed validation by canonical outcome.
func RecordValidation(outcome string) {
	validationsTotal.WithLabelValues(outcome).Inc()
}

// RecordProviderCall records one provider attempt.
func RecordProviderCall(provider, status string, duration time.Duration) {
	providerCallsTotal.WithLabelValues(provider, status).Inc()
	providerCallDuration.WithLabelValues(provider).Observe(duration.Seconds())
}

// RecordFallbackExhausted records a validation where every provider failed.
func RecordFallbackExhausted() {
	fallbackExhaustedTotal.Inc()
}

// RecordAuditEntry records a successful audit row write.
func RecordAuditEntry() {
	auditEntriesTotal.Inc()
}

// RecordAuditFailure records a swallowed audit write failure.
func RecordAuditFailure() {
	auditFailuresTotal.Inc()
}
