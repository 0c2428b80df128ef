package transcoder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/workers"
)

// BatchResult is the outcome of one request of a batch. Index is the
// request's position in the slice passed to RunBatch.
type BatchResult struct {
	Index  int
	Result *Result
	Err    error
}

// ErrMonitorStopped is reported for batch requests that were waiting on
// backpressure when the memory monitor shut down.
var ErrMonitorStopped = errors.New("transcoder: memory monitor stopped")

type batchJob struct {
	index int
	req   Request
}

// RunBatch invokes every request on a pool of numWorkers goroutines and
// returns the results in request order. numWorkers <= 0 sizes the pool to
// the available CPUs.
//
// Cancellation and backpressure are checked between requests only: a request that has started
// runs to completion, and requests not yet started report ctx.Err().
func (t *Transcoder) RunBatch(ctx context.Context, reqs []Request, numWorkers int) []BatchResult {
	results := make([]BatchResult, len(reqs))
	if len(reqs) == 0 {
		return results
	}
	if numWorkers <= 0 {
		numWorkers = workers.ForCPU(0)
	}
	numWorkers = min(numWorkers, len(reqs))

	startTime := time.Now()
	jobs := make(chan batchJob, len(reqs))
	var wg sync.WaitGroup
	var failed atomic.Int64

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				if err := ctx.Err(); err != nil {
					results[job.index] = BatchResult{Index: job.index, Err: err}
					failed.Add(1)
					continue
				}
				if t.pressure != nil && !t.pressure.WaitIfPaused() {
					results[job.index] = BatchResult{Index: job.index, Err: ErrMonitorStopped}
					failed.Add(1)
					continue
				}
				res, err := t.Invoke(job.req)
				if err != nil {
					failed.Add(1)
				}
				results[job.index] = BatchResult{Index: job.index, Result: res, Err: err}
			}
		}()
	}

	for i, req := range reqs {
		jobs <- batchJob{index: i, req: req}
	}
	close(jobs)
	wg.Wait()

	duration := time.Since(startTime)
	logging.Info("Batch complete: %d requests on %d workers in %v (failed: %d)",
		len(reqs), numWorkers, duration, failed.Load())
	if t.observer != nil {
		t.observer.ObserveBatch(len(reqs), int(failed.Load()), duration.Seconds())
	}
	return results
}
