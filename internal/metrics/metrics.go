package metrics

import (
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Gateway HTTP metrics, lazily registered on first use so that the
// env gate is honored without an init ordering dependency.
var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPActiveRequests  prometheus.Gauge

	httpMetricsOnce sync.Once
)

// initializeHTTPMetrics initializes gateway metrics exactly once;
// concurrent first requests must not double-register.
func initializeHTTPMetrics() {
	httpMetricsOnce.Do(registerHTTPMetrics)
}

func registerHTTPMetrics() {
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "Total number of HTTP requests served by the gateway",
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_http_request_duration_seconds",
			Help:    "Duration of gateway HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	HTTPActiveRequests = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "gateway_http_active_requests",
			Help: "Number of gateway requests currently in flight",
		},
	)

	mm := GetInstance()
	mm.registry.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPActiveRequests,
	)
}

// RecordHTTPRequest records metrics for a gateway HTTP request
func RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeHTTPMetrics()

	status := strconv.Itoa(statusCode)

	HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, endpoint, status).Observe(duration.Seconds())
}

// IncActiveRequests increments in-flight gateway requests
func IncActiveRequests() {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeHTTPMetrics()

	HTTPActiveRequests.Inc()
}

// DecActiveRequests decrements in-flight gateway requests
func DecActiveRequests() {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeHTTPMetrics()

	HTTPActiveRequests.Dec()
}
