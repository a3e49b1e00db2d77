package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"mediasync/internal/convert"
	"mediasync/internal/filesystem"
	"mediasync/internal/logging"
	"mediasync/internal/media"
	"mediasync/internal/mediatypes"
	"mediasync/internal/metrics"
	"mediasync/internal/pathutil"
	"mediasync/internal/watcher"
)

const eventQueueSize = 256

// Source orchestrates one root: it performs the initial scan, lazily
// imports from an optional raw-data staging root, and keeps an in-memory
// file map current from its watchers' event streams.
type Source struct {
	cfg       Config
	converter *convert.Converter

	mu    sync.RWMutex
	files map[string]media.File

	primary watcher.Watcher
	raw     watcher.Watcher

	events   chan Event
	internal chan taggedEvent
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	watchOnce sync.Once

	rawPending atomic.Int64
}

type taggedEvent struct {
	fromRaw bool
	ev      watcher.FileChangeEvent
}

// New constructs a Source. Start must be called before it watches or
// serves events.
func New(cfg Config, converter *convert.Converter) *Source {
	s := &Source{
		cfg:       cfg,
		converter: converter,
		files:     make(map[string]media.File),
		events:    make(chan Event, eventQueueSize),
		internal:  make(chan taggedEvent, eventQueueSize),
		stopChan:  make(chan struct{}),
	}

	s.primary = watcher.New(watcher.Config{
		Name:         cfg.Name,
		Root:         cfg.Path,
		Recursive:    cfg.Recursive,
		Cloud:        cfg.Cloud,
		PollInterval: cfg.PollInterval,
	})

	if cfg.RawData != nil {
		s.raw = watcher.New(watcher.Config{
			Name:         cfg.Name + "-raw",
			Root:         cfg.RawData.Path,
			Recursive:    cfg.RawData.Recursive,
			Cloud:        cfg.RawData.Cloud,
			PollInterval: cfg.PollInterval,
		})
	}

	return s
}

// Events returns the channel of Event values this Source publishes for
// manager.Manager to consume.
func (s *Source) Events() <-chan Event {
	return s.events
}

// Name returns the configured name of this source.
func (s *Source) Name() string {
	return s.cfg.Name
}

// RawPending reports how many raw-data files were awaiting import as of
// the most recent reconciliation, for metrics.StatsProvider.
func (s *Source) RawPending() int {
	return int(s.rawPending.Load())
}

// Files returns a snapshot of every file currently tracked.
func (s *Source) Files() []media.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]media.File, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	return out
}

// Start runs the initial scan (and raw-data reconciliation), then starts
// watching. Equivalent to calling Scan followed by Watch; a caller that
// needs to reconcile scan results against a store before watchers start
// (manager.Manager does) should call Scan and Watch separately instead.
func (s *Source) Start(ctx context.Context) error {
	if err := s.Scan(ctx); err != nil {
		return err
	}
	return s.Watch()
}

// Watch starts both watchers and the event-handling goroutine. Scan should
// have already populated Files(). Safe to call only once; later calls are
// a no-op.
func (s *Source) Watch() error {
	var err error
	s.watchOnce.Do(func() {
		if startErr := s.primary.Start(); startErr != nil {
			err = fmt.Errorf("source %s: starting primary watcher: %w", s.cfg.Name, startErr)
			return
		}
		s.wg.Add(1)
		go s.forward(s.primary, false)

		if s.raw != nil {
			if startErr := s.raw.Start(); startErr != nil {
				err = fmt.Errorf("source %s: starting raw watcher: %w", s.cfg.Name, startErr)
				return
			}
			s.wg.Add(1)
			go s.forward(s.raw, true)
		}

		s.wg.Add(1)
		go s.run()
	})
	return err
}

// Stop halts both watchers and the event loop, closing Events() only after
// everything has quiesced.
func (s *Source) Stop() {
	s.stopOnce.Do(func() {
		s.primary.Stop()
		if s.raw != nil {
			s.raw.Stop()
		}
		close(s.stopChan)
		s.wg.Wait()
		close(s.events)
	})
}

// forward copies w's events into the single internal queue the run loop
// drains, tagging which watcher they came from.
func (s *Source) forward(w watcher.Watcher, fromRaw bool) {
	defer s.wg.Done()
	for {
		select {
		case ev, ok := <-w.Events():
			if !ok {
				return
			}
			select {
			case s.internal <- taggedEvent{fromRaw: fromRaw, ev: ev}:
			case <-s.stopChan:
				return
			}
		case <-s.stopChan:
			return
		}
	}
}

// run is the single goroutine that handles every event serially, so every
// blocking call inside a handler (stat, probe, convert, store) is ordinary
// sequential work rather than something that needs its own lock.
func (s *Source) run() {
	defer s.wg.Done()
	ctx := context.Background()
	for {
		select {
		case te := <-s.internal:
			s.handle(ctx, te)
		case <-s.stopChan:
			return
		}
	}
}

func (s *Source) handle(ctx context.Context, te taggedEvent) {
	watcherLabel := "primary"
	if te.fromRaw {
		watcherLabel = "raw"
	}

	var kind string
	var err error
	switch {
	case te.ev.Created != nil:
		kind = "created"
		if te.fromRaw {
			err = s.processRawFile(ctx, te.ev.Created.FullPath)
		} else {
			s.handleCreateOrChange(ctx, te.ev.Created.FullPath, EventCreated)
		}
	case te.ev.Changed != nil:
		kind = "changed"
		if te.fromRaw {
			logging.Debug("source %s: ignoring raw Changed for %s", s.cfg.Name, te.ev.Changed.FullPath)
		} else {
			s.handleCreateOrChange(ctx, te.ev.Changed.FullPath, EventChanged)
		}
	case te.ev.Deleted != nil:
		kind = "deleted"
		if te.fromRaw {
			logging.Debug("source %s: ignoring raw Deleted for %s", s.cfg.Name, te.ev.Deleted.FullPath)
		} else {
			s.handleDelete(te.ev.Deleted.FullPath)
		}
	case te.ev.Renamed != nil:
		kind = "renamed"
		if te.fromRaw {
			logging.Debug("source %s: ignoring raw Renamed for %s", s.cfg.Name, te.ev.Renamed.FullPath)
		} else {
			s.handleRename(ctx, te.ev.Renamed)
		}
	}

	metrics.SourceEventsProcessedTotal.WithLabelValues(s.cfg.Name, watcherLabel, kind).Inc()
	if err != nil {
		metrics.SourceEventErrorsTotal.WithLabelValues(s.cfg.Name, watcherLabel).Inc()
		logging.Error("source %s: handling %s event failed: %v", s.cfg.Name, kind, err)
	}
}

func (s *Source) handleCreateOrChange(ctx context.Context, fullPath string, kind EventKind) {
	ext := strings.ToLower(filepath.Ext(fullPath))
	if !mediatypes.IsAccepted(ext) {
		return
	}

	info, err := filesystem.StatWithRetry(fullPath, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Debug("source %s: stat %s failed, dropping event: %v", s.cfg.Name, fullPath, err)
		return
	}

	mtimeMillis := info.ModTime().UnixMilli()

	s.mu.RLock()
	existing, tracked := s.files[fullPath]
	s.mu.RUnlock()
	if tracked && existing.Length == info.Size() && existing.Date == mtimeMillis {
		return
	}

	file := media.New(fullPath, s.cfg.Path, info.Size(), mtimeMillis)
	if file.HasDuration() {
		duration, probeErr := s.converter.Duration(ctx, fullPath)
		if probeErr != nil {
			s.primary.FeedbackCreationError(fullPath)
			logging.Warn("source %s: probing duration for %s failed, will retry: %v", s.cfg.Name, fullPath, probeErr)
			return
		}
		file.Duration = duration
	}

	s.mu.Lock()
	s.files[fullPath] = file
	count := len(s.files)
	s.mu.Unlock()
	metrics.SourceFilesTotal.WithLabelValues(s.cfg.Name).Set(float64(count))

	s.publish(Event{Kind: kind, File: file})
}

func (s *Source) handleDelete(fullPath string) {
	s.mu.Lock()
	_, existed := s.files[fullPath]
	delete(s.files, fullPath)
	count := len(s.files)
	s.mu.Unlock()

	if existed {
		metrics.SourceFilesTotal.WithLabelValues(s.cfg.Name).Set(float64(count))
		s.publish(Event{Kind: EventDeleted, OldPath: fullPath})
	}
}

func (s *Source) handleRename(ctx context.Context, r *watcher.Renamed) {
	newExt := strings.ToLower(filepath.Ext(r.FullPath))
	oldExt := strings.ToLower(filepath.Ext(r.OldFullPath))

	s.mu.RLock()
	existing, hadOld := s.files[r.OldFullPath]
	s.mu.RUnlock()

	if !mediatypes.IsAccepted(newExt) {
		if hadOld && mediatypes.IsAccepted(oldExt) {
			s.handleDelete(r.OldFullPath)
		}
		return
	}

	if !hadOld {
		// Wasn't tracked under its old name (e.g. it became acceptable only
		// through this rename); treat it as newly discovered.
		s.handleCreateOrChange(ctx, r.FullPath, EventCreated)
		return
	}

	renamed := existing.Rename(r.FullPath, s.cfg.Path)
	s.mu.Lock()
	delete(s.files, r.OldFullPath)
	s.files[r.FullPath] = renamed
	s.mu.Unlock()

	s.publish(Event{Kind: EventRenamed, File: renamed, OldPath: r.OldFullPath})
}

func (s *Source) publish(ev Event) {
	select {
	case s.events <- ev:
	case <-s.stopChan:
	}
}

// copyFile copies src to dst, creating dst's parent directory if needed.
func copyFile(src, dst string) error {
	if err := pathutil.EnsureParentDir(dst); err != nil {
		return err
	}

	in, err := filesystem.OpenWithRetry(src, filesystem.DefaultRetryConfig())
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy %s -> %s: %w", src, dst, err)
	}
	return out.Close()
}
