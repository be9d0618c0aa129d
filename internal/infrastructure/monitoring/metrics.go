// Package monitoring handles Prometheus metrics collection
package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsCollector handles Prometheus metrics collection. Each collector
// owns its registry so independent instances never collide.
type MetricsCollector struct {
	logger   *zap.Logger
	registry *prometheus.Registry

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Assistant metrics
	chatRequestsTotal    *prometheus.CounterVec
	completionCallsTotal *prometheus.CounterVec
	completionDuration   *prometheus.HistogramVec
	fallbackRepliesTotal prometheus.Counter
	recommendationsTotal *prometheus.CounterVec
	cacheOperationsTotal *prometheus.CounterVec
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(logger *zap.Logger) *MetricsCollector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		logger:   logger,
		registry: registry,

		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status_code"},
		),
		chatRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "chat_requests_total",
				Help: "Total number of assistant chat requests",
			},
			[]string{"status"},
		),
		completionCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "completion_calls_total",
				Help: "Total number of language-model completion calls",
			},
			[]string{"purpose", "status"},
		),
		completionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "completion_duration_seconds",
				Help:    "Language-model completion call duration in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
			},
			[]string{"purpose"},
		),
		fallbackRepliesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fallback_replies_total",
				Help: "Total number of replies served by the local fallback synthesizer",
			},
		),
		recommendationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "recommendations_total",
				Help: "Total number of recommendation requests",
			},
			[]string{"source"},
		),
		cacheOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cache_operations_total",
				Help: "Total number of recommendation cache operations",
			},
			[]string{"operation", "result"},
		),
	}
}

// RecordHTTPRequest records metrics for a completed HTTP request
func (m *MetricsCollector) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordChatRequest counts a chat run by terminal status
func (m *MetricsCollector) RecordChatRequest(status string) {
	m.chatRequestsTotal.WithLabelValues(status).Inc()
}

// RecordCompletionCall records a model call with its purpose and outcome
func (m *MetricsCollector) RecordCompletionCall(purpose, status string, duration time.Duration) {
	m.completionCallsTotal.WithLabelValues(purpose, status).Inc()
	m.completionDuration.WithLabelValues(purpose).Observe(duration.Seconds())
}

// RecordFallbackReply counts a reply served by the local synthesizer
func (m *MetricsCollector) RecordFallbackReply() {
	m.fallbackRepliesTotal.Inc()
}

// RecordRecommendation counts a recommendation run by source (cache or fresh)
func (m *MetricsCollector) RecordRecommendation(source string) {
	m.recommendationsTotal.WithLabelValues(source).Inc()
}

// RecordCacheOperation counts a cache operation and its result
func (m *MetricsCollector) RecordCacheOperation(operation, result string) {
	m.cacheOperationsTotal.WithLabelValues(operation, result).Inc()
}

// Handler returns the Prometheus scrape handler for this collector's registry
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
