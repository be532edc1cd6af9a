package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	moderationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contribution_moderations_total",
			Help: "Total number of contribution moderation decisions",
		},
		[]string{"action", "result"},
	)

	plantCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "plant_detail_cache_total",
			Help: "Plant detail lookups by cache outcome",
		},
		[]string{"cache_hit"},
	)

	rollbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "history_rollbacks_total",
			Help: "Total number of history rollback attempts",
		},
		[]string{"result"},
	)
)

// MetricsMiddleware collects Prometheus metrics for every HTTP request.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpRequestsInFlight.Inc()

		// Route pattern, not the concrete URL, to keep label cardinality bounded
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		c.Next()

		httpRequestsInFlight.Dec()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// RecordModeration records one approve/reject decision outcome.
func RecordModeration(action string, success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	moderationsTotal.WithLabelValues(action, result).Inc()
}

// RecordPlantCache records a plant detail cache hit or miss.
func RecordPlantCache(hit bool) {
	label := "false"
	if hit {
		label = "true"
	}
	plantCacheTotal.WithLabelValues(label).Inc()
}

// RecordRollback records a history rollback outcome.
func RecordRollback(success bool) {
	result := "success"
	if !success {
		result = "error"
	}
	rollbacksTotal.WithLabelValues(result).Inc()
}
