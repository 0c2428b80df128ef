package filesystem

// Observer records retry metrics. The metrics package implements it, which
// keeps this package free of the Prometheus dependency.
type Observer interface {
	ObserveRetryAttempt(operation string)
	ObserveRetrySuccess(operation string)
	ObserveRetryFailure(operation string)
	ObserveRetryDuration(operation string, durationSeconds float64)
	ObserveStaleError(operation string)
}

// defaultObserver is nil until SetObserver is called; recording is skipped
// while it is nil.
var defaultObserver Observer

// SetObserver sets the package-level metrics observer.
// Call this once at startup after creating the observer implementation.
func SetObserver(o Observer) {
	defaultObserver = o
}

func observe() Observer {
	return defaultObserver
}
