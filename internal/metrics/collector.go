package metrics

import (
	"time"

	"mediasync/internal/logging"
)

// StatsProvider is implemented by the manager to report aggregate counts
// for periodic metric collection.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds a point-in-time snapshot of the media store.
type Stats struct {
	TotalFiles   int
	TotalVideos  int
	TotalAudio   int
	TotalPhotos  int
	TotalPending int // raw-data files awaiting processing, across all sources
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

	stats := c.statsProvider.GetStats()

	logging.Debug("Metrics collected: files=%d video=%d audio=%d photo=%d pending=%d",
		stats.TotalFiles, stats.TotalVideos, stats.TotalAudio, stats.TotalPhotos, stats.TotalPending)
}
