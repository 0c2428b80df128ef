package filesystem

import (
	"errors"
	"os"
	"syscall"
	"time"

	"media-pipeline/internal/logging"
)

// RetryConfig configures retry behavior for filesystem operations
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the NFS retry defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 50 * time.Millisecond,
		MaxBackoff:     500 * time.Millisecond,
	}
}

// sleep is replaced in tests.
var sleep = time.Sleep

// isNFSStaleError checks if an error is an NFS stale file handle error
func isNFSStaleError(err error) bool {
	if err == nil {
		return false
	}

	// ESTALE is errno 116 on Linux
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno == syscall.ESTALE
	}
	return false
}

// withRetry runs fn until it succeeds, fails with something other than
// ESTALE, or MaxRetries retries have been spent.
func withRetry(operation, path string, config RetryConfig, fn func() error) error {
	start := time.Now()
	o := observe()
	defer func() {
		if o != nil {
			o.ObserveRetryDuration(operation, time.Since(start).Seconds())
		}
	}()

	backoff := config.InitialBackoff
	var lastErr error
	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		err := fn()
		if err == nil {
			if attempt > 0 {
				logging.Info("NFS %s succeeded on retry %d for %s", operation, attempt, path)
				if o != nil {
					o.ObserveRetrySuccess(operation)
				}
			}
			return nil
		}
		lastErr = err
		if !isNFSStaleError(err) {
			return err
		}

		if o != nil {
			o.ObserveStaleError(operation)
		}
		if attempt == config.MaxRetries {
			break
		}
		if o != nil {
			o.ObserveRetryAttempt(operation)
		}
		logging.Debug("NFS %s stale file handle for %s, retrying in %v (attempt %d/%d)",
			operation, path, backoff, attempt+1, config.MaxRetries)
		sleep(backoff)
		backoff = min(backoff*2, config.MaxBackoff)
	}

	logging.Warn("NFS %s failed after %d retries for %s: %v", operation, config.MaxRetries, path, lastErr)
	if o != nil {
		o.ObserveRetryFailure(operation)
	}
	return lastErr
}

// ReadFile reads a whole file, retrying on stale NFS handles.
func ReadFile(path string, config RetryConfig) ([]byte, error) {
	var data []byte
	err := withRetry("read", path, config, func() error {
		var err error
		data, err = os.ReadFile(path)
		return err
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteFile writes data to path, retrying on stale NFS handles. Each
// attempt rewrites the whole file.
func WriteFile(path string, data []byte, perm os.FileMode, config RetryConfig) error {
	return withRetry("write", path, config, func() error {
		return os.WriteFile(path, data, perm)
	})
}
