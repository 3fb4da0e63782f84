package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request processing metrics
var (
	// RequestsTotal counts processed requests by source (http, kafka) and outcome
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intelligence_requests_total",
			Help: "Total intelligence requests by source and outcome",
		},
		[]string{"source", "outcome"},
	)

	// AnalysisDuration tracks engine time per request in seconds
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "intelligence_analysis_duration_seconds",
			Help:    "Time spent analyzing one question's answers",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
	)

	// AnswersAnalyzed counts answers by sentiment label
	AnswersAnalyzed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intelligence_answers_analyzed_total",
			Help: "Total answers analyzed by sentiment label",
		},
		[]string{"label"},
	)

	// DuplicateRequests counts requests skipped by the dedupe set
	DuplicateRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "intelligence_duplicate_requests_total",
			Help: "Total requests skipped because they were already processed",
		},
	)
)

// Collaborator metrics
var (
	// StoreErrors counts analysis store failures by operation
	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intelligence_store_errors_total",
			Help: "Total analysis store errors by operation",
		},
		[]string{"operation"},
	)

	// PublishTotal counts result event publishes by publisher and status
	PublishTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intelligence_publish_total",
			Help: "Total result event publishes by publisher and status",
		},
		[]string{"publisher", "status"},
	)

	// DependencyHealthy is 1 while a dependency's health check passes
	DependencyHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "intelligence_dependency_healthy",
			Help: "Dependency health (1=healthy, 0=unhealthy)",
		},
		[]string{"dependency"},
	)
)
