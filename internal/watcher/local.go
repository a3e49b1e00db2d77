package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mediasync/internal/filesystem"
	"mediasync/internal/logging"
	"mediasync/internal/metrics"
	"mediasync/internal/pathutil"
)

// renamePairWindow bounds how long a bare Rename (old name gone) waits for
// a matching Create (new name) before it is treated as a plain Deleted.
// fsnotify on Linux reports the two halves of a rename as independent
// inotify events in quick succession, not atomically.
const renamePairWindow = 200 * time.Millisecond

// Local watches a root directory using OS-level change notifications via
// fsnotify, with optional recursion into subdirectories. It auto-restarts
// the underlying observer on unexpected termination unless Stop() was
// requested.
type Local struct {
	root string
	cfg  Config

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	events   chan FileChangeEvent
	stopReq  chan struct{}
	stopped  chan struct{}
	running  bool
	stopOnce sync.Once

	pendingMu    sync.Mutex
	pendingOld   *Deleted
	pendingTimer *time.Timer
}

// NewLocal constructs a fsnotify-backed Watcher for cfg.Root.
func NewLocal(cfg Config) *Local {
	return &Local{
		root:   cfg.Root,
		cfg:    cfg,
		events: make(chan FileChangeEvent, 64),
	}
}

// Events returns the channel FileChangeEvent values are delivered on.
func (l *Local) Events() <-chan FileChangeEvent {
	return l.events
}

// Start begins watching. Calling Start on an already-running Local is a
// no-op; the existing goroutine and channel keep running.
func (l *Local) Start() error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		l.mu.Unlock()
		metrics.WatcherErrorsTotal.WithLabelValues(l.cfg.Name, "local").Inc()
		return err
	}

	count := l.addDirectories(fsw)
	logging.Debug("watcher: started local watch on %s, watching %d directories", l.root, count)

	l.fsw = fsw
	l.stopReq = make(chan struct{})
	l.stopped = make(chan struct{})
	l.running = true
	l.stopOnce = sync.Once{}
	metrics.WatcherRunning.WithLabelValues(l.cfg.Name, "local").Set(1)
	l.mu.Unlock()

	go l.run()
	return nil
}

// Stop requests the watcher to terminate and blocks until it has, returning
// true if it had been running.
func (l *Local) Stop() bool {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return false
	}
	stopped := l.stopped
	l.stopOnce.Do(func() { close(l.stopReq) })
	l.mu.Unlock()

	<-stopped
	return true
}

// FeedbackCreationError is a no-op for Local: fsnotify events are not
// retried, the filesystem will re-deliver on the next real change.
func (l *Local) FeedbackCreationError(path string) {}

func (l *Local) run() {
	// Restart only after the cleanup below has cleared running, or Start
	// would treat the watcher as still active and do nothing.
	restart := false
	defer func() {
		l.mu.Lock()
		_ = l.fsw.Close()
		l.running = false
		metrics.WatcherRunning.WithLabelValues(l.cfg.Name, "local").Set(0)
		stopped := l.stopped
		l.mu.Unlock()
		close(stopped)
		if restart {
			l.maybeRestart()
		}
	}()

	for {
		select {
		case event, ok := <-l.fsw.Events:
			if !ok {
				restart = true
				return
			}
			l.handleEvent(event)

		case err, ok := <-l.fsw.Errors:
			if !ok {
				restart = true
				return
			}
			logging.Error("watcher: local watch error on %s: %v", l.root, err)
			metrics.WatcherErrorsTotal.WithLabelValues(l.cfg.Name, "local").Inc()

		case <-l.stopReq:
			return
		}
	}
}

// maybeRestart re-arms the watcher if the underlying fsnotify instance
// terminated on its own (channels closed) rather than via an explicit
// Stop() request.
func (l *Local) maybeRestart() {
	l.mu.Lock()
	select {
	case <-l.stopReq:
		l.mu.Unlock()
		return
	default:
	}
	l.mu.Unlock()

	logging.Warn("watcher: local watch on %s terminated unexpectedly, restarting", l.root)
	metrics.WatcherRestartsTotal.WithLabelValues(l.cfg.Name, "local").Inc()

	if err := l.Start(); err != nil {
		logging.Error("watcher: failed to restart local watch on %s: %v", l.root, err)
	}
}

func (l *Local) addDirectories(fsw *fsnotify.Watcher) int {
	count := 0
	err := filepath.Walk(l.root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != l.root && strings.HasPrefix(info.Name(), ".") {
			return filepath.SkipDir
		}
		if !l.cfg.Recursive && path != l.root {
			return filepath.SkipDir
		}
		if addErr := fsw.Add(path); addErr != nil {
			logging.Warn("watcher: failed to watch %s: %v", path, addErr)
			metrics.WatcherErrorsTotal.WithLabelValues(l.cfg.Name, "local").Inc()
			return nil
		}
		count++
		return nil
	})
	if err != nil {
		logging.Error("watcher: failed to walk %s: %v", l.root, err)
		metrics.WatcherErrorsTotal.WithLabelValues(l.cfg.Name, "local").Inc()
	}
	return count
}

func (l *Local) handleEvent(event fsnotify.Event) {
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	fullPath := pathutil.Normalize(event.Name)

	switch {
	case event.Op&fsnotify.Create != 0:
		if old := l.takePendingRename(); old != nil {
			metrics.WatcherEventsTotal.WithLabelValues(l.cfg.Name, "local", "renamed").Inc()
			if info, err := filesystem.StatWithRetry(event.Name, filesystem.DefaultRetryConfig()); err == nil && info.IsDir() && l.cfg.Recursive {
				if addErr := l.fsw.Add(event.Name); addErr != nil {
					logging.Warn("watcher: failed to watch new directory %s: %v", event.Name, addErr)
				}
			}
			l.emit(renamedEvent(name, fullPath, old.Name, old.FullPath))
			return
		}

		metrics.WatcherEventsTotal.WithLabelValues(l.cfg.Name, "local", "created").Inc()
		if info, err := filesystem.StatWithRetry(event.Name, filesystem.DefaultRetryConfig()); err == nil && info.IsDir() && l.cfg.Recursive {
			if addErr := l.fsw.Add(event.Name); addErr != nil {
				logging.Warn("watcher: failed to watch new directory %s: %v", event.Name, addErr)
			}
		}
		l.emit(createdEvent(name, fullPath))

	case event.Op&fsnotify.Write != 0:
		metrics.WatcherEventsTotal.WithLabelValues(l.cfg.Name, "local", "changed").Inc()
		l.emit(changedEvent(name, fullPath))

	case event.Op&fsnotify.Remove != 0:
		metrics.WatcherEventsTotal.WithLabelValues(l.cfg.Name, "local", "deleted").Inc()
		l.emit(deletedEvent(name, fullPath))

	case event.Op&fsnotify.Rename != 0:
		// The old name is gone; hold it briefly for a matching Create of
		// the new name. If none arrives within the window, it surfaces
		// as a plain Deleted.
		l.armPendingRename(&Deleted{Name: name, FullPath: fullPath})
	}
}

// armPendingRename stashes the old half of a rename, flushing (as a
// Deleted) whatever was previously pending and starting a fresh timer.
func (l *Local) armPendingRename(old *Deleted) {
	l.pendingMu.Lock()
	defer l.pendingMu.Unlock()

	if l.pendingTimer != nil {
		l.pendingTimer.Stop()
	}
	if l.pendingOld != nil {
		prev := l.pendingOld
		metrics.WatcherEventsTotal.WithLabelValues(l.cfg.Name, "local", "deleted").Inc()
		l.emit(deletedEvent(prev.Name, prev.FullPath))
	}

	l.pendingOld = old
	l.pendingTimer = time.AfterFunc(renamePairWindow, func() {
		if flushed := l.takePendingRename(); flushed != nil {
			metrics.WatcherEventsTotal.WithLabelValues(l.cfg.Name, "local", "deleted").Inc()
			l.emit(deletedEvent(flushed.Name, flushed.FullPath))
		}
	})
}

// takePendingRename atomically clears and returns the pending rename half,
// or nil if none is outstanding.
func (l *Local) takePendingRename() *Deleted {
	l.pendingMu.Lock()
	defer l.pendingMu.Unlock()

	old := l.pendingOld
	l.pendingOld = nil
	if l.pendingTimer != nil {
		l.pendingTimer.Stop()
		l.pendingTimer = nil
	}
	return old
}

func (l *Local) emit(ev FileChangeEvent) {
	select {
	case l.events <- ev:
	case <-l.stopReq:
	}
}
