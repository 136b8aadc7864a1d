// Package observability holds the service's Prometheus metrics and the
// zap logger constructor.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LookupsTotal counts finished queries by caller-facing outcome:
	// descarte, pesquisar, invalid_identifier, lookup_failed, internal.
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpa_lookups_total",
			Help: "Total number of CPF lookups by outcome",
		},
		[]string{"outcome"},
	)

	// LookupDuration observes end-to-end query latency for successful
	// lookups, including queueing for the navigation slot.
	LookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rpa_lookup_duration_seconds",
			Help:    "Duration of portal lookups in seconds",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
		},
	)

	// NavigationFailures counts navigator errors by kind (timeout,
	// structure_mismatch, challenge_detected, canceled, session_init).
	NavigationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpa_navigation_failures_total",
			Help: "Total number of navigation failures by kind",
		},
		[]string{"kind"},
	)

	// SessionRestarts counts browser allocator recreations after fatal
	// session errors.
	SessionRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rpa_session_restarts_total",
			Help: "Total number of browser session restarts",
		},
	)
)
