// Package handlers provides the HTTP API of the pipeline server.
//
// It includes handlers for:
//   - JSON and raw-body transform invocations
//   - Batches executed on the transcoder worker pool
//   - The strategy registry listing
//   - History ledger queries and aggregate statistics
//   - Health probes, version information and Prometheus metrics
//
// Transform errors are mapped to status codes by their pipeerr kind:
// 400 for input errors, 413 for capacity overflow, 415 for unsupported
// formats and 422 for range and partition errors.
package handlers
