// Package metrics provides Prometheus metrics for the Nordwatt price
// analytics service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the Nordwatt service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Scheduler metrics - one tick per hour drives everything
	ticksTotal   prometheus.Counter
	tickDuration prometheus.Histogram

	// Classification metrics
	classificationsTotal prometheus.Counter
	classificationErrors prometheus.Counter

	// Window optimizer metrics
	windowRecomputes prometheus.Counter
	windowErrors     prometheus.Counter
	windowLatency    prometheus.Histogram

	// Solar override metrics
	solarOverridesTotal prometheus.Counter

	// Cache metrics - hit/miss drive the recompute decisions
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheErrors prometheus.Counter

	// Upstream feed metrics
	priceFetches      prometheus.Counter
	priceFetchErrors  prometheus.Counter
	priceFetchLatency prometheus.Histogram

	// Current signal gauges
	medianPrice  prometheus.Gauge
	currentPrice prometheus.Gauge

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error detail metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "nordwatt",
		subsystem:        "pricing",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	m.ticksTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ticks_total",
		Help:      "Total number of hourly scheduler ticks processed",
	})

	m.tickDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "tick_duration_milliseconds",
		Help:      "Duration of one scheduler tick in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.classificationsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classifications_total",
		Help:      "Total number of daily price classifications computed",
	})

	m.classificationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "classification_errors_total",
		Help:      "Total number of classification attempts skipped on bad data",
	})

	m.windowRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "window_recomputes_total",
		Help:      "Total number of consecutive-window recomputations",
	})

	m.windowErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "window_errors_total",
		Help:      "Total number of failed consecutive-window recomputations",
	})

	m.windowLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "window_latency_milliseconds",
		Help:      "Consecutive-window optimizer latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.solarOverridesTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "solar_overrides_total",
		Help:      "Total number of days with the solar override applied",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total number of TTL cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total number of TTL cache misses (including expiries)",
	})

	m.cacheErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_errors_total",
		Help:      "Total number of cache store failures degraded to misses",
	})

	m.priceFetches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "price_fetches_total",
		Help:      "Total number of upstream price fetches",
	})

	m.priceFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "price_fetch_errors_total",
		Help:      "Total number of failed upstream price fetches",
	})

	m.priceFetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "price_fetch_latency_milliseconds",
		Help:      "Upstream price fetch latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.medianPrice = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "median_price",
		Help:      "Median spot price of the current day",
	})

	m.currentPrice = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "current_price",
		Help:      "Spot price of the current hour",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_type_total",
			Help:      "Total number of errors by type",
		},
		[]string{"error_type", "severity"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint",
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.errorLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "error_latency_milliseconds",
			Help:      "Latency of operations that resulted in errors",
			Buckets:   m.histogramBuckets,
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})
}

// RecordTick increments the tick counter.
func RecordTick() {
	globalManager.ticksTotal.Inc()
}

// RecordTickDuration records one tick's duration in milliseconds.
func RecordTickDuration(durationMs float64) {
	globalManager.tickDuration.Observe(durationMs)
}

// RecordClassification increments the classification counter.
func RecordClassification() {
	globalManager.classificationsTotal.Inc()
}

// RecordClassificationError increments the skipped-classification counter.
func RecordClassificationError() {
	globalManager.classificationErrors.Inc()
}

// RecordWindowRecompute increments the window recompute counter.
func RecordWindowRecompute() {
	globalManager.windowRecomputes.Inc()
}

// RecordWindowError increments the failed window recompute counter.
func RecordWindowError() {
	globalManager.windowErrors.Inc()
}

// RecordWindowLatency records optimizer latency in milliseconds.
func RecordWindowLatency(latencyMs float64) {
	globalManager.windowLatency.Observe(latencyMs)
}

// RecordSolarOverride increments the solar override counter.
func RecordSolarOverride() {
	globalManager.solarOverridesTotal.Inc()
}

// RecordCacheHit increments the cache hit counter.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss increments the cache miss counter.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordCacheError increments the degraded cache counter.
func RecordCacheError() {
	globalManager.cacheErrors.Inc()
}

// RecordPriceFetch increments the upstream fetch counter.
func RecordPriceFetch() {
	globalManager.priceFetches.Inc()
}

// RecordPriceFetchError increments the failed upstream fetch counter.
func RecordPriceFetchError() {
	globalManager.priceFetchErrors.Inc()
}

// RecordPriceFetchLatency records upstream fetch latency in milliseconds.
func RecordPriceFetchLatency(latencyMs float64) {
	globalManager.priceFetchLatency.Observe(latencyMs)
}

// UpdateMedianPrice sets the current day's median price gauge.
func UpdateMedianPrice(v float64) {
	globalManager.medianPrice.Set(v)
}

// UpdateCurrentPrice sets the current hour's price gauge.
func UpdateCurrentPrice(v float64) {
	globalManager.currentPrice.Set(v)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByType records an error by type and severity.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error by endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of a failed operation.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the memory usage gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine count gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by the service.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
