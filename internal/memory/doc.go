// Package memory keeps the pipeline's heap inside its container limit.
//
// [ConfigureFromEnv] derives GOMEMLIMIT from the container limit exposed
// through the Kubernetes Downward API:
//
//   - GOMEMLIMIT: used as-is when set.
//   - MEMORY_LIMIT: container limit in bytes.
//   - MEMORY_RATIO: share of MEMORY_LIMIT given to the Go heap (default 0.85).
//
// [Monitor] samples heap usage and implements transcoder.Backpressure: once
// usage crosses the critical mark, batch workers block in WaitIfPaused until
// usage falls back below the high mark.
package memory
