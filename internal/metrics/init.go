package metrics

import (
	"media-pipeline/internal/mediatypes"
	"media-pipeline/internal/pipeerr"
	"media-pipeline/internal/transcoder"
)

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Transform metrics (per kind × operation) ---
	for _, kind := range mediatypes.Kinds() {
		k := string(kind)
		TransformInputBytes.WithLabelValues(k)
		TransformOutputBytes.WithLabelValues(k)
		for _, op := range transcoder.Operations() {
			o := string(op)
			TransformInvocationsTotal.WithLabelValues(k, o, "success")
			TransformInvocationsTotal.WithLabelValues(k, o, "error")
			TransformDuration.WithLabelValues(k, o)
		}
		for _, status := range []string{"success", "error"} {
			HistoryTransforms.WithLabelValues(k, status)
		}
	}

	// --- Error kinds for the operations that can produce them most often ---
	for _, errKind := range pipeerr.Kinds() {
		for _, op := range []transcoder.Operation{transcoder.OpProcess, transcoder.OpCompress} {
			TransformErrorsTotal.WithLabelValues(string(mediatypes.KindAudio), string(op), errKind.String())
		}
	}

	for _, dir := range []string{"input", "output"} {
		HistoryBytes.WithLabelValues(dir)
	}

	for _, reason := range []string{"timeout", "client_gone", "other"} {
		HTTPStreamErrors.WithLabelValues(reason)
	}

	// --- DB query operations ---
	for _, op := range []string{"initialize_schema", "record_transform", "record_batch", "recent_transforms", "get_stats", "prune_history"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	// --- Filesystem retry operations ---
	for _, op := range []string{"read", "write"} {
		FilesystemRetryAttempts.WithLabelValues(op)
		FilesystemRetrySuccess.WithLabelValues(op)
		FilesystemRetryFailures.WithLabelValues(op)
		FilesystemStaleErrors.WithLabelValues(op)
		FilesystemRetryDuration.WithLabelValues(op)
	}

	for _, file := range []string{"main", "wal", "shm"} {
		DBSizeBytes.WithLabelValues(file)
	}
}
