package watcher

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediasync/internal/filelist"
	"mediasync/internal/logging"
	"mediasync/internal/metrics"
	"mediasync/internal/pathutil"
)

const defaultPollInterval = 3 * time.Minute

// Cloud watches a root by polling at a fixed interval and diffing
// successive filelist.Comparable snapshots, the backend used for
// cloud-mounted drives that don't deliver OS-level change notifications.
type Cloud struct {
	name      string
	root      string
	recursive bool
	interval  time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	running   bool
	scanning  bool
	previous   *filelist.Comparable
	retryList  map[string]struct{}
	generation int

	events chan FileChangeEvent
}

// NewCloud constructs a poll-and-diff Watcher for cfg.Root.
func NewCloud(cfg Config) *Cloud {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Cloud{
		name:      cfg.Name,
		root:      cfg.Root,
		recursive: cfg.Recursive,
		interval:  interval,
		retryList: make(map[string]struct{}),
		events:    make(chan FileChangeEvent, 64),
	}
}

// Events returns the channel FileChangeEvent values are delivered on.
func (c *Cloud) Events() <-chan FileChangeEvent {
	return c.events
}

// Start arms the polling timer. Starting an already-running Cloud is a
// no-op.
func (c *Cloud) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}
	c.running = true
	metrics.WatcherRunning.WithLabelValues(c.name, "cloud").Set(1)
	c.armLocked()
	return nil
}

// Stop cancels the pending timer. It does not interrupt a scan already in
// progress. Returns true iff a timer was armed.
func (c *Cloud) Stop() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return false
	}
	c.running = false
	metrics.WatcherRunning.WithLabelValues(c.name, "cloud").Set(0)
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
		return true
	}
	return false
}

// FeedbackCreationError adds path to the retry list. Before the next diff
// the path is removed from the previous snapshot, so a file that failed
// downstream processing (e.g. ffprobe) and still exists is reported as
// Created again on the next tick.
func (c *Cloud) FeedbackCreationError(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryList[path] = struct{}{}
}

func (c *Cloud) armLocked() {
	c.timer = time.AfterFunc(c.interval, c.tick)
}

func (c *Cloud) tick() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	if c.scanning {
		c.mu.Unlock()
		c.rearm()
		return
	}
	c.scanning = true
	c.generation++
	gen := c.generation
	c.mu.Unlock()

	scanID := uuid.New().String()
	start := time.Now()
	logging.Debug("watcher: cloud scan %s (gen %d) starting for %s", scanID, gen, c.root)

	current, err := filelist.Create(context.Background(), c.root, c.recursive)
	metrics.CloudPollDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	if err != nil {
		logging.Error("watcher: cloud scan %s failed for %s: %v", scanID, c.root, err)
		metrics.WatcherErrorsTotal.WithLabelValues(c.name, "cloud").Inc()
		c.mu.Lock()
		c.scanning = false
		c.mu.Unlock()
		c.rearm()
		return
	}

	c.diffAndEmit(current, scanID)

	c.mu.Lock()
	c.previous = current
	c.scanning = false
	c.mu.Unlock()

	c.rearm()
}

func (c *Cloud) diffAndEmit(current *filelist.Comparable, scanID string) {
	c.mu.Lock()
	previous := c.previous
	retryCount := len(c.retryList)
	for path := range c.retryList {
		previous.Remove(path)
	}
	c.retryList = make(map[string]struct{})
	c.mu.Unlock()

	metrics.CloudPollRetryListSize.WithLabelValues(c.name).Set(float64(retryCount))

	if previous == nil {
		return
	}

	onlyInPrevious, onlyInCurrent := previous.Compare(current)

	for _, path := range onlyInPrevious {
		name := pathutil.Base(path)
		metrics.WatcherEventsTotal.WithLabelValues(c.name, "cloud", "deleted").Inc()
		c.emit(deletedEvent(name, pathutil.Normalize(path)))
	}
	for _, path := range onlyInCurrent {
		name := pathutil.Base(path)
		metrics.WatcherEventsTotal.WithLabelValues(c.name, "cloud", "created").Inc()
		c.emit(createdEvent(name, pathutil.Normalize(path)))
	}

	logging.Debug("watcher: cloud scan %s for %s: %d deleted, %d created",
		scanID, c.root, len(onlyInPrevious), len(onlyInCurrent))
}

func (c *Cloud) rearm() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	c.armLocked()
}

func (c *Cloud) emit(ev FileChangeEvent) {
	c.events <- ev
}
