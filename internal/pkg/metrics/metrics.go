package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the API and the aggregation engine.
type Metrics struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	aggregationDuration *prometheus.HistogramVec
	degradedTotal       *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sitebooks_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sitebooks_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	aggregation := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sitebooks_aggregation_duration_seconds",
		Help:    "Time spent computing an aggregate, cache misses only.",
		Buckets: prometheus.DefBuckets,
	}, []string{"aggregator"})
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sitebooks_aggregation_degraded_total",
		Help: "Optional aggregate parts that failed and fell back to their zero value.",
	}, []string{"part"})
	registry.MustRegister(requests, duration, aggregation, degraded)
	return &Metrics{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:       requests,
		requestDuration:     duration,
		aggregationDuration: aggregation,
		degradedTotal:       degraded,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records count and latency for every HTTP request.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveAggregation records how long an aggregator took.
func (m *Metrics) ObserveAggregation(aggregator string, since time.Time) {
	if m == nil {
		return
	}
	m.aggregationDuration.WithLabelValues(aggregator).Observe(time.Since(since).Seconds())
}

// IncDegraded counts a sub-result that collapsed to its zero value.
func (m *Metrics) IncDegraded(part string) {
	if m == nil {
		return
	}
	m.degradedTotal.WithLabelValues(part).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
