package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "jamb",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jamb",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "jamb",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	estimatesComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jamb",
			Subsystem: "pricing",
			Name:      "estimates_total",
			Help:      "Estimates computed, by kind (work, estimate, order, reschedule).",
		},
		[]string{"kind"},
	)

	ordersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "jamb",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Composite orders placed.",
		},
	)

	orderValue = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "jamb",
			Subsystem: "orders",
			Name:      "total_usd",
			Help:      "Total price of placed orders.",
			Buckets:   prometheus.ExponentialBuckets(50, 2, 10), // $50 to ~$25k
		},
	)

	recommendationRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jamb",
			Subsystem: "recommendations",
			Name:      "requests_total",
			Help:      "Recommendation requests by source and outcome.",
		},
		[]string{"source", "success"},
	)

	importItems = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jamb",
			Subsystem: "import",
			Name:      "items_total",
			Help:      "Imported finishing material items by outcome.",
		},
		[]string{"outcome"},
	)

	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "jamb",
			Subsystem: "jobs",
			Name:      "runs_total",
			Help:      "Background job executions by type and outcome.",
		},
		[]string{"type", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		estimatesComputed,
		ordersPlaced,
		orderValue,
		recommendationRequests,
		importItems,
		jobRuns,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted marks a request as in flight and returns the function that records it.
func RequestStarted() func(method, route string, status int) {
	start := time.Now()
	httpInFlight.Inc()
	return func(method, route string, status int) {
		httpInFlight.Dec()
		if route == "" {
			route = "unmatched"
		}
		method = strings.ToUpper(method)
		httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordEstimate counts a computed estimate.
func RecordEstimate(kind string) {
	estimatesComputed.WithLabelValues(kind).Inc()
}

// RecordOrder counts a placed order and its value.
func RecordOrder(total float64) {
	ordersPlaced.Inc()
	orderValue.Observe(total)
}

// RecordRecommendation counts a recommendation request.
func RecordRecommendation(source string, success bool) {
	recommendationRequests.WithLabelValues(source, strconv.FormatBool(success)).Inc()
}

// RecordImportItems adds n items with the given outcome (upserted, skipped, failed).
func RecordImportItems(outcome string, n int) {
	if n > 0 {
		importItems.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordJob counts a background job run.
func RecordJob(taskType string, success bool) {
	jobRuns.WithLabelValues(taskType, strconv.FormatBool(success)).Inc()
}
