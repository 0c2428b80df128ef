package metrics

import (
	"context"
	"time"

	"media-pipeline/internal/logging"
)

// StatsProvider supplies ledger statistics for collection.
type StatsProvider interface {
	CollectorStats(ctx context.Context) (Stats, error)
}

// Stats holds the current ledger statistics.
type Stats struct {
	// Transforms counts records by kind, then status ("success" or "error").
	Transforms  map[string]map[string]int
	InputBytes  int64
	OutputBytes int64
	// DBFiles holds SQLite file sizes keyed by "main", "wal" and "shm".
	DBFiles map[string]int64
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	interval      time.Duration
	stopChan      chan struct{}
}

// NewCollector creates a new metrics collector
func NewCollector(provider StatsProvider, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		interval:      interval,
		stopChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection
func (c *Collector) Stop() {
	close(c.stopChan)
}

func (c *Collector) collectLoop() {
	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.interval)
	defer cancel()

	stats, err := c.statsProvider.CollectorStats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	total := 0
	for kind, byStatus := range stats.Transforms {
		for status, count := range byStatus {
			HistoryTransforms.WithLabelValues(kind, status).Set(float64(count))
			total += count
		}
	}
	HistoryBytes.WithLabelValues("input").Set(float64(stats.InputBytes))
	HistoryBytes.WithLabelValues("output").Set(float64(stats.OutputBytes))
	for file, size := range stats.DBFiles {
		DBSizeBytes.WithLabelValues(file).Set(float64(size))
	}

	logging.Debug("Metrics collected: transforms=%d, input_bytes=%d, output_bytes=%d",
		total, stats.InputBytes, stats.OutputBytes)
}
