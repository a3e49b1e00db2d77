package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"mediasync/internal/filesystem"
	"mediasync/internal/logging"
	"mediasync/internal/media"
	"mediasync/internal/mediatypes"
	"mediasync/internal/metrics"
	"mediasync/internal/pathutil"
	"mediasync/internal/workers"
)

const maxScanWorkers = 16

// Scan performs the initial walk of the primary root, populating the
// in-memory file map, then reconciles the raw-data root if one is
// configured. It must complete before Start begins watching.
func (s *Source) Scan(ctx context.Context) error {
	start := time.Now()

	paths, err := listMediaFiles(s.cfg.Path, s.cfg.Recursive)
	if err != nil {
		return fmt.Errorf("source %s: scanning %s: %w", s.cfg.Name, s.cfg.Path, err)
	}

	files := s.statAndProbe(ctx, paths)

	s.mu.Lock()
	for _, f := range files {
		s.files[f.Path] = f
	}
	s.mu.Unlock()

	metrics.SourceScanDuration.WithLabelValues(s.cfg.Name, "initial").Observe(time.Since(start).Seconds())
	metrics.SourceFilesTotal.WithLabelValues(s.cfg.Name).Set(float64(len(files)))
	logging.Info("source %s: initial scan found %d files under %s", s.cfg.Name, len(files), s.cfg.Path)

	if s.cfg.RawData != nil {
		if err := s.reconcileRawData(ctx); err != nil {
			return fmt.Errorf("source %s: reconciling raw data: %w", s.cfg.Name, err)
		}
	}

	return nil
}

// listMediaFiles walks root and returns the absolute paths of every regular
// file whose extension is accepted, skipping dotfiles and dot-directories.
func listMediaFiles(root string, recursive bool) ([]string, error) {
	var paths []string

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			if mediatypes.IsAccepted(strings.ToLower(filepath.Ext(entry.Name()))) {
				paths = append(paths, pathutil.Join(root, entry.Name()))
			}
		}
		return paths, nil
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		if mediatypes.IsAccepted(strings.ToLower(filepath.Ext(path))) {
			paths = append(paths, pathutil.Normalize(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

// statAndProbe stats every path and, for files with a meaningful duration,
// probes it with ffprobe. Work is fanned out across a bounded worker pool
// since probing is I/O-bound. A path that fails to stat or probe is
// logged and dropped rather than failing the whole scan.
func (s *Source) statAndProbe(ctx context.Context, paths []string) []media.File {
	workerCount := workersFor(len(paths))

	jobs := make(chan string)
	results := make([]media.File, 0, len(paths))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				f, ok := s.buildFile(ctx, path)
				if !ok {
					continue
				}
				mu.Lock()
				results = append(results, f)
				mu.Unlock()
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	return results
}

func (s *Source) buildFile(ctx context.Context, path string) (media.File, bool) {
	info, err := filesystem.StatWithRetry(path, filesystem.DefaultRetryConfig())
	if err != nil {
		logging.Warn("source %s: stat %s failed during scan, skipping: %v", s.cfg.Name, path, err)
		return media.File{}, false
	}

	f := media.New(path, s.cfg.Path, info.Size(), info.ModTime().UnixMilli())
	if f.HasDuration() {
		duration, err := s.converter.Duration(ctx, path)
		if err != nil {
			logging.Warn("source %s: probing %s failed during scan, skipping: %v", s.cfg.Name, path, err)
			return media.File{}, false
		}
		f.Duration = duration
	}

	return f, true
}

func workersFor(jobCount int) int {
	if jobCount == 0 {
		return 1
	}
	n := workers.ForIO(maxScanWorkers)
	if n > jobCount {
		n = jobCount
	}
	return n
}
