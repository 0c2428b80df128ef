// Package startup handles application initialization, configuration loading,
// and startup/shutdown logging.
//
// # Configuration
//
// [LoadConfig] reads the following environment variables:
//
//   - PORT: HTTP server port (default: 8080)
//   - DATABASE_DIR: Directory holding pipeline.db (default: /database)
//   - MAX_BUFFER_BYTES: Request body and output capacity bound (default: 64 MiB)
//   - MAX_BATCH_SIZE: Requests accepted per batch call (default: 32)
//   - TRANSFORM_WORKERS: Batch worker pool size (default: one per CPU)
//   - HISTORY_ENABLED: Record transforms in the SQLite ledger (default: true)
//   - METRICS_ENABLED: Serve /metrics (default: true)
//   - LOG_HEALTH_CHECKS: Log health check requests (default: true)
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: see package memory
//
// Invalid values fall back to the default with a warning. The database
// directory is created and checked for write access only when the history
// ledger is enabled.
//
// # Build Information
//
// Version, Commit and BuildTime are injected via ldflags and exposed via
// [GetBuildInfo].
package startup
