// Package metrics exposes Prometheus collectors for the quiz service.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	quizCacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_cache_entries",
			Help: "Number of validated quiz entries currently cached.",
		},
	)

	quizServesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_serves_total",
			Help: "Quiz requests answered, labeled by outcome (hit, waited, empty, error).",
		},
		[]string{"outcome"},
	)

	quizRefillsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_refills_total",
			Help: "Completed refill runs, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	quizRefillDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quiz_refill_duration_seconds",
			Help:    "Wall time of a single refill run.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	quizCandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_candidates_total",
			Help: "Refill candidates processed, labeled by phase and outcome.",
		},
		[]string{"phase", "outcome"},
	)

	imageResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_resolutions_total",
			Help: "Image resolution results, labeled by winning strategy (or none).",
		},
		[]string{"strategy"},
	)

	imageStabilityChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_stability_checks_total",
			Help: "Stability check verdicts, labeled by result.",
		},
		[]string{"result"},
	)

	upstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Encyclopedia requests, labeled by call and status.",
		},
		[]string{"call", "status"},
	)

	upstreamRateLimitDelaysSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_rate_limit_delays_seconds",
			Help:    "Histogram of rate limit wait durations.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 30, 120},
		},
		[]string{"method", "route"},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// SanitizeSite extracts a lowercase hostname for use as a label.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// SetCacheEntries records the current cache depth.
func SetCacheEntries(n int) {
	quizCacheEntries.Set(float64(n))
}

// ObserveServe counts one quiz request outcome.
func ObserveServe(outcome string) {
	quizServesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRefill records one finished refill run.
func ObserveRefill(outcome string, duration time.Duration) {
	quizRefillsTotal.WithLabelValues(outcome).Inc()
	quizRefillDurationSeconds.Observe(duration.Seconds())
}

// ObserveCandidate counts a refill candidate decision.
func ObserveCandidate(phase, outcome string) {
	quizCandidatesTotal.WithLabelValues(phase, outcome).Inc()
}

// ObserveResolution counts the strategy that produced an image, or "none".
func ObserveResolution(strategy string) {
	if strategy == "" {
		strategy = "none"
	}
	imageResolutionsTotal.WithLabelValues(strategy).Inc()
}

// ObserveStability counts a stability verdict.
func ObserveStability(stable bool) {
	result := "unstable"
	if stable {
		result = "stable"
	}
	imageStabilityChecksTotal.WithLabelValues(result).Inc()
}

// ObserveUpstream counts an encyclopedia call. code 0 means a transport error.
func ObserveUpstream(call string, code int) {
	status := "error"
	if code > 0 {
		status = strconv.Itoa(code)
	}
	upstreamRequestsTotal.WithLabelValues(call, status).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	upstreamRateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
