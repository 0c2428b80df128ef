// Package main provides the entry point for the Media Pipeline server.
//
// Media Pipeline is a stateless HTTP service that transforms in-memory media
// buffers: rate-controlled processing and compression, merging, trimming,
// splitting, resizing and PDF text extraction for audio, image, video and
// document payloads.
//
// # Application Lifecycle
//
//  1. Configuration Loading: reads environment variables and prepares the
//     database directory when the history ledger is enabled
//  2. Memory Configuration: sets GOMEMLIMIT from MEMORY_LIMIT and
//     MEMORY_RATIO and starts the memory monitor
//  3. Database Initialization: opens the SQLite history ledger in WAL mode
//  4. Component Initialization: transcoder with metrics observer and memory
//     backpressure, metrics collector, HTTP handlers
//  5. HTTP Server Setup: routes, W3C request logging, Prometheus HTTP
//     metrics and gzip compression of JSON responses
//  6. Graceful Shutdown: SIGINT/SIGTERM drain the server, stop background
//     goroutines and close the database
//
// # HTTP API
//
//   - POST /api/transform: one JSON request, base64 inputs and outputs
//   - POST /api/transform/raw/{kind}/{op}: raw body in, raw body out
//   - POST /api/batch: up to MAX_BATCH_SIZE JSON requests on the worker pool
//   - GET /api/formats: kinds, operations and registered strategies
//   - GET /api/history, GET /api/stats: history ledger queries
//   - GET /health, /healthz, /livez, /readyz, /version, /metrics
//
// # Environment Variables
//
//   - PORT: HTTP port (default: 8080)
//   - DATABASE_DIR: directory of pipeline.db (default: /database)
//   - MAX_BUFFER_BYTES: request body and output bound (default: 64 MiB)
//   - MAX_BATCH_SIZE: requests per batch (default: 32)
//   - TRANSFORM_WORKERS: batch pool size (default: CPU-sized)
//   - HISTORY_ENABLED: record transforms in SQLite (default: true)
//   - HISTORY_RETENTION_HOURS: age at which history is pruned (default: 168)
//   - METRICS_ENABLED: expose /metrics (default: true)
//   - LOG_HEALTH_CHECKS: log probe requests (default: true)
//   - LOG_LEVEL: debug, info, warn or error
//   - MEMORY_LIMIT, MEMORY_RATIO, GOMEMLIMIT: memory limit configuration
//
// # Build Requirements
//
// The history ledger uses mattn/go-sqlite3 and needs CGO.
package main
