package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

// readinessTimeout bounds the database ping of the readiness probe.
const readinessTimeout = 2 * time.Second

// MemoryHealth summarizes the memory monitor.
type MemoryHealth struct {
	Paused       bool    `json:"paused"`
	CurrentBytes int64   `json:"currentBytes"`
	LimitBytes   int64   `json:"limitBytes"`
	Usage        float64 `json:"usage"`
}

// HealthResponse contains the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Ready   bool   `json:"ready"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`

	History       bool   `json:"history"`
	DatabaseError string `json:"databaseError,omitempty"`

	Memory *MemoryHealth `json:"memory,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`

	MaxBufferBytes int `json:"maxBufferBytes"`
	MaxBatchSize   int `json:"maxBatchSize"`
}

// HealthCheck returns the health status of the service. A failing history
// database degrades the status but never makes the service unready, since
// transforms do not depend on it.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:         statusHealthy,
		Ready:          true,
		Version:        startup.Version,
		Uptime:         time.Since(h.startTime).Round(time.Second).String(),
		History:        h.db != nil,
		GoVersion:      runtime.Version(),
		NumCPU:         runtime.NumCPU(),
		NumGoroutine:   runtime.NumGoroutine(),
		MaxBufferBytes: h.opts.MaxBufferBytes,
		MaxBatchSize:   h.opts.MaxBatchSize,
	}

	if h.db != nil {
		if err := h.pingDB(r.Context()); err != nil {
			response.Status = statusDegraded
			response.DatabaseError = err.Error()
		}
	}

	if h.memory != nil {
		current, limit, usage := h.memory.Stats()
		response.Memory = &MemoryHealth{
			Paused:       h.memory.IsPaused(),
			CurrentBytes: current,
			LimitBytes:   limit,
			Usage:        usage,
		}
		if response.Memory.Paused {
			response.Status = statusDegraded
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	writeJSON(w, response)
}

// LivenessCheck is a simple liveness probe (always returns 200 if server is running)
func (h *Handlers) LivenessCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	// For HEAD requests, only send headers (no body)
	if r.Method != http.MethodHead {
		writeJSON(w, map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessCheck returns 200 unless the history database is enabled and
// unreachable.
func (h *Handlers) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		if err := h.pingDB(r.Context()); err != nil {
			logging.Warn("Readiness check failed: %v", err)
			writeJSONStatus(w, http.StatusServiceUnavailable, "not_ready")
			return
		}
	}
	writeJSONStatus(w, http.StatusOK, "ready")
}

func (h *Handlers) pingDB(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, readinessTimeout)
	defer cancel()
	return h.db.Ping(ctx)
}
