package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsCreatedTotal prometheus.Counter
	SessionsActiveTotal  prometheus.Gauge
	SessionCacheHits     prometheus.Counter
	SessionCacheMisses   prometheus.Counter

	// Database metrics
	DBConnectionsActive prometheus.Gauge
	DBConnectionsIdle   prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docvault_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docvault_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SessionsCreatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_sessions_created_total",
			Help: "Total number of sessions created",
		}),
		SessionsActiveTotal: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docvault_sessions_active",
			Help: "Number of currently active sessions",
		}),
		SessionCacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_session_cache_hits_total",
			Help: "Session cache hits",
		}),
		SessionCacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "docvault_session_cache_misses_total",
			Help: "Session cache misses",
		}),
		DBConnectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docvault_db_connections_active",
			Help: "Active database connections",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "docvault_db_connections_idle",
			Help: "Idle database connections",
		}),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.SessionsCreatedTotal,
		m.SessionsActiveTotal,
		m.SessionCacheHits,
		m.SessionCacheMisses,
		m.DBConnectionsActive,
		m.DBConnectionsIdle,
	)

	return m
}

// metricsResponseWriter wraps http.ResponseWriter to capture the status code
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *metricsResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics
func HTTPMetricsMiddleware(metrics *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(rw, r)

			status := strconv.Itoa(rw.statusCode)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
		})
	}
}

// RegisterMetricsEndpoint registers the /metrics endpoint
func RegisterMetricsEndpoint(mux *http.ServeMux, registry *prometheus.Registry) {
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
