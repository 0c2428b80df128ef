package handlers

import (
	"time"

	"media-pipeline/internal/database"
	"media-pipeline/internal/streaming"
	"media-pipeline/internal/transcoder"
)

// Default limits used when Options leaves them zero.
const (
	DefaultMaxBatchSize = 32
)

// MemoryStatus reports memory pressure. memory.Monitor implements it.
type MemoryStatus interface {
	IsPaused() bool
	Stats() (current, limit int64, usage float64)
}

// Options configures Handlers.
type Options struct {
	// MaxBufferBytes bounds request bodies and requested capacities.
	// 0 uses the transcoder's MaxCapacity.
	MaxBufferBytes int
	MaxBatchSize   int
	// Workers sizes the batch pool. 0 sizes it to the available CPUs.
	Workers int
	Stream  streaming.TimeoutWriterConfig
}

// Handlers serves the pipeline API.
type Handlers struct {
	transcoder *transcoder.Transcoder
	db         *database.Database
	memory     MemoryStatus
	opts       Options
	startTime  time.Time
}

// New creates the handlers. db and mem may be nil when the history ledger or
// the memory monitor is disabled.
func New(trans *transcoder.Transcoder, db *database.Database, mem MemoryStatus, opts Options) *Handlers {
	if opts.MaxBufferBytes <= 0 || opts.MaxBufferBytes > trans.MaxCapacity() {
		opts.MaxBufferBytes = trans.MaxCapacity()
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = DefaultMaxBatchSize
	}
	if opts.Stream.WriteTimeout == 0 && opts.Stream.MaxDuration == 0 && opts.Stream.ChunkSize == 0 && opts.Stream.OnProgress == nil {
		opts.Stream = streaming.DefaultTimeoutWriterConfig()
	}
	return &Handlers{
		transcoder: trans,
		db:         db,
		memory:     mem,
		opts:       opts,
		startTime:  time.Now(),
	}
}
