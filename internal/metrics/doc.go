// Package metrics provides Prometheus instrumentation for the media pipeline.
//
// All metrics are prefixed with "media_pipeline_" and registered with the
// default Prometheus registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//   - HTTPResponseBytes: Counter of response bytes by path
//   - HTTPStreamErrors: Counter of result streaming failures by reason
//
// ## Transform Metrics
//
// Recorded through the observer returned by [NewTranscoderObserver]:
//   - TransformInvocationsTotal: Counter by kind, operation, and status
//   - TransformErrorsTotal: Counter by kind, operation, and error kind
//   - TransformDuration: Histogram by kind and operation
//   - TransformInputBytes / TransformOutputBytes: Counters by kind
//   - BatchSize, BatchFailuresTotal, BatchDuration
//
// ## Database Metrics
//
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBConnectionsOpen: Gauge of open database connections
//   - DBSizeBytes: Gauge of database file sizes (main, WAL, SHM)
//
// ## History Metrics
//
// Gauges refreshed by the [Collector] from the history ledger:
//   - HistoryTransforms: recorded transforms by kind and status
//   - HistoryBytes: recorded bytes by direction
//
// ## Memory Metrics
//
// Updated by memory.Monitor on each sample:
//   - GoMemAllocBytes, GoMemSysBytes, GoGCRuns
//   - MemoryUsageRatio, MemoryPaused, MemoryPausesTotal
//
// # Collector
//
//	collector := metrics.NewCollector(db, 1*time.Minute)
//	collector.Start()
//	defer collector.Stop()
//
// # Prometheus Queries
//
// Failure ratio per operation:
//
//	sum(rate(media_pipeline_transform_invocations_total{status="error"}[5m])) by (operation) /
//	sum(rate(media_pipeline_transform_invocations_total[5m])) by (operation)
//
// P95 transform latency:
//
//	histogram_quantile(0.95, sum(rate(media_pipeline_transform_duration_seconds_bucket[5m])) by (le, kind))
package metrics
