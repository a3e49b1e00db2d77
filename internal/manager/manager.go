package manager

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"mediasync/internal/convert"
	"mediasync/internal/logging"
	"mediasync/internal/mediatypes"
	"mediasync/internal/metrics"
	"mediasync/internal/source"
	"mediasync/internal/store"
	"mediasync/internal/thumbnail"
)

// Manager aggregates every configured source.Source against a shared
// store.Store, reconciling it at startup and keeping it current from each
// source's event stream afterward.
type Manager struct {
	store      *store.Store
	sources    []*source.Source
	thumbnails *thumbnail.Generator
	cronSched  string
	cronRunner *cron.Cron

	mu          sync.RWMutex
	lastUpdated time.Time

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New constructs a Manager over st. Every source in cfg.Sources shares the
// given converter; cfg.ReconcileSchedule, if set, runs full reconciliation
// on a cron schedule in addition to the one-time startup reconciliation.
// thumbnails may be nil, in which case changed files are never evicted from
// a thumbnail cache because there isn't one.
func New(st *store.Store, converter *convert.Converter, thumbnails *thumbnail.Generator, cfg Config) *Manager {
	m := &Manager{
		store:      st,
		thumbnails: thumbnails,
		cronSched:  cfg.ReconcileSchedule,
		stopChan:   make(chan struct{}),
	}
	for _, sc := range cfg.Sources {
		m.sources = append(m.sources, source.New(sc, converter))
	}
	return m
}

// Start performs startup reconciliation across all sources, then begins
// watching each of them and dispatching their event streams.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.reconcile(ctx); err != nil {
		return err
	}

	for _, src := range m.sources {
		if err := src.Watch(); err != nil {
			return fmt.Errorf("manager: starting watch: %w", err)
		}
		m.wg.Add(1)
		go m.dispatch(src)
	}
	metrics.ManagerSourcesRunning.Set(float64(len(m.sources)))

	if m.cronSched != "" {
		m.cronRunner = cron.New()
		if _, err := m.cronRunner.AddFunc(m.cronSched, func() {
			if err := m.reconcile(context.Background()); err != nil {
				logging.Error("manager: scheduled reconciliation failed: %v", err)
			}
		}); err != nil {
			return fmt.Errorf("manager: invalid reconcile schedule %q: %w", m.cronSched, err)
		}
		m.cronRunner.Start()
	}

	return nil
}

// StopWatching halts every source's watchers and the cron scheduler if
// one is running, then waits for all dispatch goroutines to exit.
func (m *Manager) StopWatching() {
	m.stopOnce.Do(func() {
		if m.cronRunner != nil {
			m.cronRunner.Stop()
		}
		for _, src := range m.sources {
			src.Stop()
		}
		close(m.stopChan)
		m.wg.Wait()
	})
}

// Reconcile runs the same reconciliation procedure Start performs at
// startup, on demand. Safe to call while sources are being watched.
func (m *Manager) Reconcile(ctx context.Context) error {
	return m.reconcile(ctx)
}

// reconcile implements the startup reconciliation procedure: every path
// already in the store not reobserved by any source is deleted, every
// newly observed path is upserted, and lastUpdated is bumped regardless of
// whether anything changed.
func (m *Manager) reconcile(ctx context.Context) error {
	start := time.Now()

	existing, err := m.store.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("manager: loading existing records: %w", err)
	}
	existingPaths := make(map[string]struct{}, len(existing))
	for _, rec := range existing {
		existingPaths[rec.Path] = struct{}{}
	}

	for _, src := range m.sources {
		if err := src.Scan(ctx); err != nil {
			return fmt.Errorf("manager: scanning source %s: %w", src.Name(), err)
		}

		for _, f := range src.Files() {
			if _, tracked := existingPaths[f.Path]; tracked {
				delete(existingPaths, f.Path)
				continue
			}
			if err := m.store.Upsert(ctx, store.Record{File: f}); err != nil {
				logging.Error("manager: upserting %s during reconciliation: %v", f.Path, err)
			}
		}
	}

	if len(existingPaths) > 0 {
		stale := make([]string, 0, len(existingPaths))
		for p := range existingPaths {
			stale = append(stale, p)
		}
		if err := m.store.DeleteMany(ctx, stale); err != nil {
			logging.Error("manager: deleting %d stale records: %v", len(stale), err)
		}
	}

	m.touchLastUpdated()
	metrics.ManagerReconcileDuration.Observe(time.Since(start).Seconds())
	metrics.ManagerLastReconcileTimestamp.Set(float64(time.Now().Unix()))
	logging.Info("manager: reconciliation complete in %s, %d stale records removed", time.Since(start), len(existingPaths))
	return nil
}

// dispatch drains one source's event stream into store mutations for as
// long as the source keeps emitting.
func (m *Manager) dispatch(src *source.Source) {
	defer m.wg.Done()
	ctx := context.Background()
	for ev := range src.Events() {
		m.handle(ctx, ev)
	}
}

func (m *Manager) handle(ctx context.Context, ev source.Event) {
	var err error
	switch ev.Kind {
	case source.EventCreated, source.EventChanged:
		// The stale thumbnail is cached under the previous size and mtime.
		var old *store.Record
		if ev.Kind == source.EventChanged && m.thumbnails != nil {
			old, _ = m.store.GetByPath(ctx, ev.File.Path)
		}
		err = m.store.Upsert(ctx, store.Record{File: ev.File})
		if err == nil && old != nil {
			m.thumbnails.Invalidate(old.Path, old.Length, old.Date)
		}
	case source.EventDeleted:
		err = m.store.Delete(ctx, ev.OldPath)
	case source.EventRenamed:
		err = m.store.UpdatePath(ctx, ev.OldPath, ev.File.Path, ev.File.Title)
	}

	if err != nil {
		logging.Error("manager: handling %s event for %s failed: %v", ev.Kind, ev.File.Path, err)
		return
	}
	m.touchLastUpdated()
}

func (m *Manager) touchLastUpdated() {
	m.mu.Lock()
	m.lastUpdated = time.Now()
	m.mu.Unlock()
}

// LastUpdated returns the time of the most recent store mutation, whether
// from reconciliation or steady-state event handling.
func (m *Manager) LastUpdated() time.Time {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastUpdated
}

// AllFiles returns every record currently in the store.
func (m *Manager) AllFiles(ctx context.Context) ([]store.Record, error) {
	return m.store.GetAll(ctx)
}

// GetFile returns the record with the given ID, and whether it was found.
func (m *Manager) GetFile(ctx context.Context, id int64) (*store.Record, bool) {
	rec, err := m.store.GetByID(ctx, id)
	if err != nil {
		return nil, false
	}
	return rec, true
}

// GetStats implements metrics.StatsProvider.
func (m *Manager) GetStats() metrics.Stats {
	recs, err := m.store.GetAll(context.Background())
	if err != nil {
		logging.Error("manager: GetStats: loading records: %v", err)
		return metrics.Stats{}
	}

	var stats metrics.Stats
	stats.TotalFiles = len(recs)
	for _, rec := range recs {
		switch rec.MediaType() {
		case mediatypes.ClassVideo:
			stats.TotalVideos++
		case mediatypes.ClassAudio:
			stats.TotalAudio++
		case mediatypes.ClassPhoto:
			stats.TotalPhotos++
		}
	}
	for _, src := range m.sources {
		stats.TotalPending += src.RawPending()
	}
	return stats
}
