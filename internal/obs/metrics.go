package obs

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "http_in_flight_requests",
		Help: "In-flight HTTP requests.",
	})

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	authOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_outcomes_total",
			Help: "Authentication and authorization outcomes by code.",
		},
		[]string{"code"},
	)

	rateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "admission_rejections_total",
			Help: "Requests rejected by the admission controller, per limiter.",
		},
		[]string{"limiter"},
	)

	revocationSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "revocation_registry_entries",
		Help: "Current number of revoked tokens held in the registry.",
	})

	revocationSweeps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "revocation_registry_sweeps_total",
		Help: "Registry sweeps that cleared entries past the ceiling.",
	})
)

// Init registers metrics with the default registry.
func Init() {
	prometheus.MustRegister(
		httpInFlight, httpRequestsTotal, httpRequestDuration,
		authOutcomes, rateLimited, revocationSize, revocationSweeps,
	)
}

// Handler serves the Prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAuthOutcome counts an authentication or authorization result.
func ObserveAuthOutcome(code string) {
	authOutcomes.WithLabelValues(code).Inc()
}

// AuthOutcomeCounter returns the counter child for a code, so callers and
// tests can read the current value.
func AuthOutcomeCounter(code string) prometheus.Counter {
	return authOutcomes.WithLabelValues(code)
}

// ObserveRateLimited counts a rejection by the named limiter.
func ObserveRateLimited(limiter string) {
	rateLimited.WithLabelValues(limiter).Inc()
}

// SetRevocationSize records the registry's current entry count.
func SetRevocationSize(n int) {
	revocationSize.Set(float64(n))
}

// ObserveRevocationSweep counts a sweep that actually cleared entries.
func ObserveRevocationSweep() {
	revocationSweeps.Inc()
}

// CanonicalPath collapses per-resource path segments so metric cardinality
// stays bounded.
func CanonicalPath(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	// /v1/accounts/{id}
	if len(parts) == 4 && parts[1] == "v1" && parts[2] == "accounts" && parts[3] != "" {
		return "/v1/accounts/:id"
	}
	return path
}

// Instrument wraps a handler with RPS/latency/in-flight measurements.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := CanonicalPath(r.URL.Path)
		method := r.Method

		httpInFlight.Inc()
		start := time.Now()

		sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(sw, r)

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(sw.code)

		httpRequestDuration.WithLabelValues(method, path, status).Observe(duration)
		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpInFlight.Dec()
	})
}

// statusWriter records the response code written by downstream handlers.
type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}
