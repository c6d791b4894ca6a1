package metrics

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics for calls made against the clinic backend and for the
// per-key query cache in front of it.
var (
	upstreamRequestsTotal   *prometheus.CounterVec
	upstreamRequestDuration *prometheus.HistogramVec
	cacheHitsTotal          *prometheus.CounterVec
	cacheMissesTotal        *prometheus.CounterVec
	cacheRevalidationsTotal *prometheus.CounterVec
	cacheInvalidationsTotal *prometheus.CounterVec

	upstreamMetricsOnce sync.Once
)

// initializeUpstreamMetrics initializes backend and cache metrics
// exactly once; concurrent first requests must not double-register.
func initializeUpstreamMetrics() {
	upstreamMetricsOnce.Do(registerUpstreamMetrics)
}

func registerUpstreamMetrics() {
	upstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of HTTP requests to the clinic backend",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	upstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Time spent on HTTP requests to the clinic backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method"},
	)

	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_hits_total",
			Help: "Total number of query cache hits",
		},
		[]string{"resource"},
	)

	cacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_misses_total",
			Help: "Total number of query cache misses",
		},
		[]string{"resource"},
	)

	cacheRevalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_revalidations_total",
			Help: "Total number of background revalidations",
		},
		[]string{"resource", "result"},
	)

	cacheInvalidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_invalidations_total",
			Help: "Total number of cache entries invalidated after mutations",
		},
		[]string{"resource"},
	)

	mm := GetInstance()
	mm.registry.MustRegister(
		upstreamRequestsTotal,
		upstreamRequestDuration,
		cacheHitsTotal,
		cacheMissesTotal,
		cacheRevalidationsTotal,
		cacheInvalidationsTotal,
	)
}

// RecordUpstreamRequest records metrics for one call to the backend
func RecordUpstreamRequest(endpoint, method string, startTime time.Time, statusCode int) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeUpstreamMetrics()

	duration := time.Since(startTime).Seconds()

	upstreamRequestsTotal.WithLabelValues(endpoint, method, fmt.Sprintf("%d", statusCode)).Inc()
	upstreamRequestDuration.WithLabelValues(endpoint, method).Observe(duration)
}

// RecordCacheHit records a cache hit for the given resource kind
func RecordCacheHit(resource string) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeUpstreamMetrics()

	cacheHitsTotal.WithLabelValues(resource).Inc()
}

// RecordCacheMiss records a cache miss for the given resource kind
func RecordCacheMiss(resource string) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeUpstreamMetrics()

	cacheMissesTotal.WithLabelValues(resource).Inc()
}

// RecordCacheRevalidation records the outcome of a background refresh
func RecordCacheRevalidation(resource, result string) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeUpstreamMetrics()

	cacheRevalidationsTotal.WithLabelValues(resource, result).Inc()
}

// RecordCacheInvalidation records entries dropped after a mutation
func RecordCacheInvalidation(resource string, count int) {
	if os.Getenv("ENABLE_BUSINESS_METRICS") != "true" {
		return
	}

	initializeUpstreamMetrics()

	cacheInvalidationsTotal.WithLabelValues(resource).Add(float64(count))
}
