package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that fixes the worker count.
const EnvOverride = "TRANSFORM_WORKERS"

// Override returns the worker count set through TRANSFORM_WORKERS, if it
// is a positive integer.
func Override() (int, bool) {
	value := os.Getenv(EnvOverride)
	if value == "" {
		return 0, false
	}
	count, err := strconv.Atoi(value)
	if err != nil || count <= 0 {
		return 0, false
	}
	return count, true
}

// Count returns the number of workers for a task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks such as segment transforms and resizing
//   - 2.0 for I/O-bound tasks
//   - 1.5 for mixed tasks such as text extraction
//
// The limit parameter caps the worker count. Use 0 for no limit.
// TRANSFORM_WORKERS takes precedence over the calculation but not over limit.
func Count(multiplier float64, limit int) int {
	if count, ok := Override(); ok {
		if limit > 0 && count > limit {
			return limit
		}
		return count
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU).
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
