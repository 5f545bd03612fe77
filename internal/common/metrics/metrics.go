// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_total",
			Help: "Total number of search/recommendation requests by endpoint",
		},
		[]string{"endpoint"},
	)

	SearchRequestsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_requests_failed_total",
			Help: "Total number of failed requests by endpoint and error code",
		},
		[]string{"endpoint", "error_code"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "search_duration_seconds",
			Help: "Duration of request processing in seconds",
		},
		[]string{"endpoint"},
	)

	BroadStageFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "search_broad_stage_fallbacks_total",
			Help: "Searches where the strict stage returned zero results",
		},
	)

	InterpreterFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_interpreter_fallbacks_total",
			Help: "Free-text queries answered by the rule-based parser instead of the language model",
		},
		[]string{"reason"},
	)

	CollaboratorFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "collaborator_failures_total",
			Help: "External collaborator failures recovered via fallback",
		},
		[]string{"service"},
	)

	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "result_cache_events_total",
			Help: "Result cache hits and misses",
		},
		[]string{"outcome"},
	)
)
