package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	HTTPResponseBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_http_response_bytes_total",
			Help: "Total bytes written in HTTP responses",
		},
		[]string{"path"},
	)

	HTTPStreamErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_http_stream_errors_total",
			Help: "Errors while streaming result bodies",
		},
		[]string{"reason"}, // "timeout", "client_gone", "other"
	)
)

// Transform metrics
var (
	TransformInvocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_transform_invocations_total",
			Help: "Total number of transform invocations",
		},
		[]string{"kind", "operation", "status"},
	)

	TransformErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_transform_errors_total",
			Help: "Transform failures by error kind",
		},
		[]string{"kind", "operation", "error"},
	)

	TransformDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_transform_duration_seconds",
			Help:    "Transform duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"kind", "operation"},
	)

	TransformInputBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_transform_input_bytes_total",
			Help: "Total bytes passed into transforms",
		},
		[]string{"kind"},
	)

	TransformOutputBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_transform_output_bytes_total",
			Help: "Total bytes produced by successful transforms",
		},
		[]string{"kind"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_batch_size",
			Help:    "Number of requests per batch",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)

	BatchFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_batch_failures_total",
			Help: "Total number of failed requests inside batches",
		},
	)

	BatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_batch_duration_seconds",
			Help:    "Batch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_db_connections_open",
			Help: "Number of open database connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_pipeline_db_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// History metrics, refreshed by the Collector
var (
	HistoryTransforms = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_pipeline_history_transforms",
			Help: "Transforms recorded in the history ledger",
		},
		[]string{"kind", "status"},
	)

	HistoryBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_pipeline_history_bytes",
			Help: "Bytes recorded in the history ledger",
		},
		[]string{"direction"}, // "input", "output"
	)
)

// Memory metrics, updated by the memory monitor
var (
	GoMemAllocBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_go_mem_alloc_bytes",
			Help: "Current heap allocation in bytes",
		},
	)

	GoMemSysBytes = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_go_mem_sys_bytes",
			Help: "Total memory obtained from the OS in bytes",
		},
	)

	GoGCRuns = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_go_gc_runs",
			Help: "Number of completed GC cycles",
		},
	)

	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_memory_usage_ratio",
			Help: "Heap usage as a ratio of the memory limit (0.0-1.0)",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_pipeline_memory_paused",
			Help: "Whether batch workers are paused for memory pressure (1 = paused)",
		},
	)

	MemoryPausesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_pipeline_memory_pauses_total",
			Help: "Times batch workers were paused for memory pressure",
		},
	)
)

// Filesystem retry metrics
var (
	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_filesystem_retry_attempts_total",
			Help: "Retries of filesystem operations after stale NFS handles",
		},
		[]string{"operation"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_filesystem_retry_success_total",
			Help: "Filesystem operations that succeeded after a retry",
		},
		[]string{"operation"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_filesystem_retry_failures_total",
			Help: "Filesystem operations that failed after exhausting retries",
		},
		[]string{"operation"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_pipeline_filesystem_stale_errors_total",
			Help: "ESTALE errors returned by filesystem operations",
		},
		[]string{"operation"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_pipeline_filesystem_retry_duration_seconds",
			Help:    "Duration of filesystem operations including retries",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 2.5},
		},
		[]string{"operation"},
	)
)

// Application info
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "media_pipeline_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
