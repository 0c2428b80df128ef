package streaming

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"media-pipeline/internal/logging"
)

// Sentinel errors for streaming operations.
var (
	// ErrWriteTimeout indicates that a write operation exceeded the configured timeout.
	// This typically occurs when a client is receiving data too slowly.
	ErrWriteTimeout = errors.New("write timeout exceeded")

	// ErrClientGone indicates that the client disconnected before the stream completed.
	// This is detected via the request context being canceled.
	ErrClientGone = errors.New("client disconnected")

	// ErrStreamCanceled indicates that the writer was closed or its context
	// ended for a reason other than client cancellation.
	ErrStreamCanceled = errors.New("stream canceled")
)

// TimeoutWriterConfig configures the timeout writer behavior
type TimeoutWriterConfig struct {
	// WriteTimeout bounds each chunk write (0 = no deadline)
	WriteTimeout time.Duration
	// MaxDuration is the absolute maximum streaming duration (0 = unlimited)
	MaxDuration time.Duration
	// ChunkSize is the size of chunks to write (0 = write as received)
	ChunkSize int
	// OnProgress is called after every flushed chunk
	OnProgress func(bytesWritten int64, duration time.Duration)
}

// DefaultTimeoutWriterConfig returns the server defaults
func DefaultTimeoutWriterConfig() TimeoutWriterConfig {
	return TimeoutWriterConfig{
		WriteTimeout: 30 * time.Second,
		ChunkSize:    64 * 1024,
	}
}

// TimeoutWriter wraps an http.ResponseWriter with timeout protection
type TimeoutWriter struct {
	w         http.ResponseWriter
	rc        *http.ResponseController
	ctx       context.Context
	config    TimeoutWriterConfig
	startTime time.Time

	mu           sync.Mutex
	bytesWritten int64
	closed       bool
	deadlines    bool
}

// NewTimeoutWriter creates a new timeout-protected writer
func NewTimeoutWriter(ctx context.Context, w http.ResponseWriter, config TimeoutWriterConfig) *TimeoutWriter {
	return &TimeoutWriter{
		w:         w,
		rc:        http.NewResponseController(w),
		ctx:       ctx,
		config:    config,
		startTime: time.Now(),
		deadlines: config.WriteTimeout > 0,
	}
}

// Write implements io.Writer. Large writes are split into ChunkSize pieces,
// each flushed before the next.
func (tw *TimeoutWriter) Write(p []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return 0, ErrStreamCanceled
	}

	total := 0
	for len(p) > 0 {
		if err := tw.contextError(); err != nil {
			return total, err
		}
		if tw.config.MaxDuration > 0 && time.Since(tw.startTime) > tw.config.MaxDuration {
			return total, ErrWriteTimeout
		}

		chunk := p
		if tw.config.ChunkSize > 0 && len(chunk) > tw.config.ChunkSize {
			chunk = chunk[:tw.config.ChunkSize]
		}

		n, err := tw.writeChunk(chunk)
		total += n
		if err != nil {
			return total, err
		}
		p = p[len(chunk):]
	}
	return total, nil
}

func (tw *TimeoutWriter) writeChunk(chunk []byte) (int, error) {
	if tw.deadlines {
		if err := tw.rc.SetWriteDeadline(time.Now().Add(tw.config.WriteTimeout)); err != nil {
			if !errors.Is(err, http.ErrNotSupported) {
				return 0, err
			}
			tw.deadlines = false
		}
	}

	n, err := tw.w.Write(chunk)
	tw.bytesWritten += int64(n)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, ErrWriteTimeout
		}
		if ctxErr := tw.contextError(); ctxErr != nil {
			return n, ctxErr
		}
		return n, err
	}

	if err := tw.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return n, err
	}
	if tw.config.OnProgress != nil {
		tw.config.OnProgress(tw.bytesWritten, time.Since(tw.startTime))
	}
	return n, nil
}

// contextError returns an appropriate error based on context state
func (tw *TimeoutWriter) contextError() error {
	switch err := tw.ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return ErrClientGone
	default:
		return ErrStreamCanceled
	}
}

// Close marks the writer as closed and clears the write deadline.
func (tw *TimeoutWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return nil
	}
	tw.closed = true
	if tw.deadlines {
		if err := tw.rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return err
		}
	}
	return nil
}

// Stats returns streaming statistics
func (tw *TimeoutWriter) Stats() (bytesWritten int64, duration time.Duration) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	return tw.bytesWritten, time.Since(tw.startTime)
}

// WriteChunked writes data to w through a TimeoutWriter and returns the
// number of bytes written.
func WriteChunked(ctx context.Context, w http.ResponseWriter, data []byte, config TimeoutWriterConfig) (int64, error) {
	tw := NewTimeoutWriter(ctx, w, config)
	_, err := tw.Write(data)
	if closeErr := tw.Close(); closeErr != nil {
		logging.Warn("Failed to close timeout writer: %v", closeErr)
	}

	written, duration := tw.Stats()
	logging.Debug("Stream completed: %d/%d bytes in %v", written, len(data), duration)
	return written, err
}

// Reason classifies a streaming error as "timeout", "client_gone" or "other".
func Reason(err error) string {
	switch {
	case errors.Is(err, ErrWriteTimeout):
		return "timeout"
	case errors.Is(err, ErrClientGone):
		return "client_gone"
	default:
		return "other"
	}
}
