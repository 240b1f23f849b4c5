// Package metrics defines the Prometheus metric collectors for the analysis
// pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	AnalysesTotal        *prometheus.CounterVec
	AnalyzeDuration      prometheus.Histogram
	FetchDuration        *prometheus.HistogramVec
	DocumentBytes        prometheus.Histogram
	TokensProcessedTotal prometheus.Counter
	DistinctTokens       prometheus.Histogram
	WorkersPerAnalysis   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
	EventsDroppedTotal   prometheus.Counter
	CircuitTransitions   *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		AnalysesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyses_total",
				Help: "Total analysis runs by outcome (ok, invalid_input, fetch_error, worker_error).",
			},
			[]string{"outcome"},
		),
		AnalyzeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analyze_duration_seconds",
				Help:    "End-to-end analysis latency in seconds, fetch included.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		FetchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fetch_duration_seconds",
				Help:    "Document fetch latency in seconds by outcome.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"outcome"},
		),
		DocumentBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "document_bytes",
				Help:    "Size of analyzed documents in bytes.",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
			},
		),
		TokensProcessedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "tokens_processed_total",
				Help: "Total token occurrences counted across all analyses.",
			},
		),
		DistinctTokens: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "distinct_tokens",
				Help:    "Distinct tokens per analyzed document.",
				Buckets: prometheus.ExponentialBuckets(100, 4, 8),
			},
		),
		WorkersPerAnalysis: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "workers_per_analysis",
				Help:    "Worker count used per analysis run.",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "document_cache_hits_total",
				Help: "Total document cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "document_cache_misses_total",
				Help: "Total document cache misses.",
			},
		),
		EventsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "analysis_events_dropped_total",
				Help: "Analysis events dropped because the publish buffer was full.",
			},
		),
		CircuitTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fetch_circuit_transitions_total",
				Help: "Circuit breaker state transitions on the document fetch path.",
			},
			[]string{"state"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.AnalysesTotal,
		m.AnalyzeDuration,
		m.FetchDuration,
		m.DocumentBytes,
		m.TokensProcessedTotal,
		m.DistinctTokens,
		m.WorkersPerAnalysis,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.EventsDroppedTotal,
		m.CircuitTransitions,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
