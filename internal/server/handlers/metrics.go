package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Auth events counted by MetricsHandler
const (
	EventRegister       = "register"
	EventLoginSuccess   = "login_success"
	EventLoginFailure   = "login_failure"
	EventRefresh        = "refresh"
	EventRefreshFailure = "refresh_failure"
	EventLogout         = "logout"
	EventAuthFailure    = "auth_failure"
	EventValidation     = "validation_error"
)

// MetricsHandler owns the server's Prometheus registry
type MetricsHandler struct {
	logger   *slog.Logger
	registry *prometheus.Registry

	requests          *prometheus.CounterVec
	duration          *prometheus.HistogramVec
	authEvents        *prometheus.CounterVec
	rateLimitExceeded prometheus.Counter
	reviews           *prometheus.CounterVec
}

// NewMetricsHandler creates a new metrics handler with its own registry
func NewMetricsHandler(logger *slog.Logger) *MetricsHandler {
	h := &MetricsHandler{
		logger:   logger,
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gram_stub",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gram_stub",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gram_stub",
			Name:      "auth_events_total",
			Help:      "Registrations, logins, refreshes and logouts by outcome.",
		}, []string{"event"}),
		rateLimitExceeded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gram_stub",
			Name:      "rate_limit_exceeded_total",
			Help:      "Requests rejected by the rate limiter.",
		}),
		reviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gram_stub",
			Name:      "reviews_total",
			Help:      "Texts submitted for review by kind.",
		}, []string{"kind"}),
	}

	h.registry.MustRegister(
		h.requests,
		h.duration,
		h.authEvents,
		h.rateLimitExceeded,
		h.reviews,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return h
}

// GetMetrics handles GET /metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	promhttp.HandlerFor(h.registry, promhttp.HandlerOpts{
		ErrorLog: slog.NewLogLogger(h.logger.Handler(), slog.LevelError),
	}).ServeHTTP(w, r)
}

// ObserveRequest records a finished request
func (h *MetricsHandler) ObserveRequest(method, route string, status int, duration time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	h.duration.WithLabelValues(route).Observe(duration.Seconds())
}

// IncrementAuthEvent counts one auth event
func (h *MetricsHandler) IncrementAuthEvent(event string) {
	h.authEvents.WithLabelValues(event).Inc()
}

// IncrementRateLimitExceeded counts one rate-limited request
func (h *MetricsHandler) IncrementRateLimitExceeded() {
	h.rateLimitExceeded.Inc()
}

// IncrementReviews counts one review request
func (h *MetricsHandler) IncrementReviews(kind string) {
	h.reviews.WithLabelValues(kind).Inc()
}
