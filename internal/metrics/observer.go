package metrics

import (
	"media-pipeline/internal/filesystem"
	"media-pipeline/internal/pipeerr"
	"media-pipeline/internal/transcoder"
)

// transcoderObserver implements transcoder.Observer using the Prometheus
// metrics declared in this package.
type transcoderObserver struct{}

// NewTranscoderObserver creates an observer that records invocation and
// batch metrics into the counters and histograms declared in metrics.go.
func NewTranscoderObserver() transcoder.Observer {
	return &transcoderObserver{}
}

func (o *transcoderObserver) ObserveInvocation(kind, operation string, durationSeconds float64, inputBytes, outputBytes int, err error) {
	TransformDuration.WithLabelValues(kind, operation).Observe(durationSeconds)
	TransformInputBytes.WithLabelValues(kind).Add(float64(inputBytes))
	if err != nil {
		TransformInvocationsTotal.WithLabelValues(kind, operation, "error").Inc()
		TransformErrorsTotal.WithLabelValues(kind, operation, pipeerr.KindOf(err).String()).Inc()
		return
	}
	TransformInvocationsTotal.WithLabelValues(kind, operation, "success").Inc()
	TransformOutputBytes.WithLabelValues(kind).Add(float64(outputBytes))
}

func (o *transcoderObserver) ObserveBatch(size, failed int, durationSeconds float64) {
	BatchSize.Observe(float64(size))
	BatchFailuresTotal.Add(float64(failed))
	BatchDuration.Observe(durationSeconds)
}

// filesystemObserver implements filesystem.Observer.
type filesystemObserver struct{}

// NewFilesystemObserver creates an observer for filesystem retry metrics.
func NewFilesystemObserver() filesystem.Observer {
	return &filesystemObserver{}
}

func (o *filesystemObserver) ObserveRetryAttempt(operation string) {
	FilesystemRetryAttempts.WithLabelValues(operation).Inc()
}

func (o *filesystemObserver) ObserveRetrySuccess(operation string) {
	FilesystemRetrySuccess.WithLabelValues(operation).Inc()
}

func (o *filesystemObserver) ObserveRetryFailure(operation string) {
	FilesystemRetryFailures.WithLabelValues(operation).Inc()
}

func (o *filesystemObserver) ObserveRetryDuration(operation string, durationSeconds float64) {
	FilesystemRetryDuration.WithLabelValues(operation).Observe(durationSeconds)
}

func (o *filesystemObserver) ObserveStaleError(operation string) {
	FilesystemStaleErrors.WithLabelValues(operation).Inc()
}
