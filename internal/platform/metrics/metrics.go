// Package metrics registers the Prometheus instrumentation for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ContainersSealed  prometheus.Counter
	RequestsSubmitted prometheus.Counter
	RequestsDecided   *prometheus.CounterVec
	RequestsExecuted  prometheus.Counter
	ReleasesBlocked   prometheus.Counter
	ExecutionDuration prometheus.Histogram
	HTTPLatency       *prometheus.HistogramVec
	CacheLookups      *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		ContainersSealed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "geovault_containers_sealed_total",
			Help: "Total number of data containers sealed by owners.",
		}),
		RequestsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "geovault_requests_submitted_total",
			Help: "Total number of analysis requests submitted.",
		}),
		RequestsDecided: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "geovault_requests_decided_total",
			Help: "Total approval decisions, labeled by outcome.",
		}, []string{"decision"}),
		RequestsExecuted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "geovault_requests_executed_total",
			Help: "Total number of approved requests executed.",
		}),
		ReleasesBlocked: promauto.NewCounter(prometheus.CounterOpts{
			Name: "geovault_releases_blocked_total",
			Help: "Results withheld by the release guard.",
		}),
		ExecutionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "geovault_execution_duration_seconds",
			Help:    "Wall time spent executing analyses inside the vault.",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geovault_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "status"}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "geovault_metadata_cache_lookups_total",
			Help: "Container metadata cache lookups, labeled hit or miss.",
		}, []string{"result"}),
	}
}
