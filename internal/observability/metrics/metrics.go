package metrics

import (
	"database/sql"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

const (
	metricPrefix = "electricity_"

	resultSuccess  = "success"
	resultError    = "error"
	resultTimeout  = "timeout"
	resultNotFound = "not_found"

	cacheHit   = "hit"
	cacheMiss  = "miss"
	cacheError = "error"
)

var (
	registerOnce sync.Once

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec

	queryTotal   *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec

	cacheLookups *prometheus.CounterVec

	exportTotal *prometheus.CounterVec
)

// Init registers the service metrics and, when db is set, the connection
// pool collector. Calling it more than once is a no-op.
func Init(db *sql.DB, logger logrus.FieldLogger) {
	registerOnce.Do(func() {
		httpRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "http_requests_total",
				Help: "Total HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		)
		httpLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		)

		queryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "query_total",
				Help: "Total repository queries by operation and result",
			},
			[]string{"operation", "result"},
		)
		queryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "query_duration_seconds",
				Help:    "Repository query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		)

		cacheLookups = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_lookups_total",
				Help: "Day detail cache lookups by result",
			},
			[]string{"result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total daily stats exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			httpRequests,
			httpLatency,
			queryTotal,
			queryLatency,
			cacheLookups,
			exportTotal,
		)

		if db != nil {
			if err := prometheus.Register(collectors.NewDBStatsCollector(db, "electricity")); err != nil && logger != nil {
				logger.WithError(err).Warn("db stats collector not registered")
			}
		}
	})
}

// ObserveHTTP records one served request.
func ObserveHTTP(route string, code int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	if httpRequests != nil {
		httpRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	}
	if httpLatency != nil {
		httpLatency.WithLabelValues(route).Observe(duration.Seconds())
	}
}

// ObserveQuery records repository query latency and result.
func ObserveQuery(operation, result string, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if queryTotal != nil {
		queryTotal.WithLabelValues(operation, result).Inc()
	}
	if queryLatency != nil {
		queryLatency.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// IncCacheLookup increments the cache lookup counter.
func IncCacheLookup(result string) {
	if result == "" {
		result = "unknown"
	}
	if cacheLookups != nil {
		cacheLookups.WithLabelValues(result).Inc()
	}
}

// IncExport increments the export counter.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess  = resultSuccess
	ResultError    = resultError
	ResultTimeout  = resultTimeout
	ResultNotFound = resultNotFound

	CacheHit   = cacheHit
	CacheMiss  = cacheMiss
	CacheError = cacheError
)
