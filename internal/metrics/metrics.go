package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Series load metrics
var (
	// SeriesLoadsTotal counts LoadSeries calls by outcome
	SeriesLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydrodash_series_loads_total",
			Help: "Total number of forecast series loads by outcome",
		},
		[]string{"outcome"},
	)

	// SeriesLoadDuration tracks how long a series load took, cache hits included
	SeriesLoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydrodash_series_load_duration_seconds",
			Help:    "Duration of forecast series loads in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// CacheLookupsTotal counts series cache lookups
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydrodash_cache_lookups_total",
			Help: "Total number of series cache lookups",
		},
		[]string{"backend", "result"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydrodash_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydrodash_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

// Database metrics
var (
	// DBQueriesTotal tracks the total number of database queries
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hydrodash_db_queries_total",
			Help: "Total number of database queries executed",
		},
		[]string{"query_type", "table", "status"},
	)

	// DBQueryDuration tracks the duration of database queries
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hydrodash_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"query_type", "table"},
	)
)

var (
	// AppInfo provides static information about the application
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hydrodash_app_info",
			Help: "Application information (always 1)",
		},
		[]string{"version"},
	)

	// AppStartTime records when the application started
	AppStartTime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hydrodash_app_start_time_seconds",
			Help: "Unix timestamp of when the application started",
		},
	)

	// StationsLoaded is the size of the station directory
	StationsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hydrodash_stations_loaded",
			Help: "Number of stations in the loaded directory",
		},
	)
)

func init() {
	AppStartTime.SetToCurrentTime()
}

// SetAppInfo publishes the running version
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version).Set(1)
}

// RecordSeriesLoad records one series load. outcome is one of "ok",
// "fetch_error", "parse_error", "empty", "error".
func RecordSeriesLoad(outcome string, duration time.Duration) {
	SeriesLoadsTotal.WithLabelValues(outcome).Inc()
	SeriesLoadDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss for backend
func RecordCacheLookup(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookupsTotal.WithLabelValues(backend, result).Inc()
}

// RecordHTTPRequest records a served request
func RecordHTTPRequest(route, method string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(route, method, statusClass(status)).Inc()
	HTTPRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordDBQuery records a database query execution
func RecordDBQuery(queryType, table string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueriesTotal.WithLabelValues(queryType, table, status).Inc()
	DBQueryDuration.WithLabelValues(queryType, table).Observe(duration.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
