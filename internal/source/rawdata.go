package source

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"mediasync/internal/filelist"
	"mediasync/internal/filesystem"
	"mediasync/internal/logging"
	"mediasync/internal/media"
	"mediasync/internal/mediatypes"
	"mediasync/internal/metrics"
	"mediasync/internal/pathutil"
)

// reconcileRawData compares the raw-data root against the primary root and
// imports every raw file with no counterpart at the same relative path.
// Files already imported (their relative path now exists under the
// primary root) are skipped without being reprocessed or deleted from the
// raw root.
func (s *Source) reconcileRawData(ctx context.Context) error {
	start := time.Now()

	rawList, err := filelist.Create(ctx, s.cfg.RawData.Path, s.cfg.RawData.Recursive)
	if err != nil {
		return fmt.Errorf("listing raw root %s: %w", s.cfg.RawData.Path, err)
	}
	primaryList, err := filelist.Create(ctx, s.cfg.Path, s.cfg.Recursive)
	if err != nil {
		return fmt.Errorf("listing primary root %s: %w", s.cfg.Path, err)
	}

	onlyInRaw, _ := rawList.Compare(primaryList)
	s.rawPending.Store(int64(len(onlyInRaw)))
	metrics.SourceRawPendingTotal.WithLabelValues(s.cfg.Name).Set(float64(len(onlyInRaw)))

	for _, rawPath := range onlyInRaw {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processRawFile(ctx, rawPath); err != nil {
			logging.Error("source %s: importing raw file %s failed: %v", s.cfg.Name, rawPath, err)
		}
	}

	metrics.SourceScanDuration.WithLabelValues(s.cfg.Name, "reconcile").Observe(time.Since(start).Seconds())
	return nil
}

// processRawFile imports one raw-data file into the primary root:
//
//  1. filter on the accepted extensions, logging and skipping otherwise
//  2. stat the raw file
//  3. compute its destination path under the primary root, mirroring its
//     relative path
//  4. if the destination already exists, log-skip and return: raw files
//     are never deleted or moved after import, so a replayed or
//     duplicate Created event for an already-imported path must not
//     re-transcode/re-copy over a file that may be actively served
//  5. for .mp4/.mp3, probe the raw file with ffprobe first; if probing
//     fails, feed back to the raw watcher and return without touching the
//     primary root, since the file is assumed still being materialized by
//     a cloud mount and the watcher will re-report it next cycle
//  6. suspend the primary watcher so the copy/convert below does not
//     surface as a spurious external Created event
//  7. for .mp4, attempt an ffmpeg normalize pass; fall back to a plain
//     copy if it has no video stream. Every other extension is copied
//     directly without ever going through the converter
//  8. stat the destination to obtain its real size/mtime
//  9. probe duration if applicable
//  10. insert into the in-memory map and publish a Created event, then
//      resume the primary watcher
func (s *Source) processRawFile(ctx context.Context, rawAbsPath string) error {
	ext := strings.ToLower(filepath.Ext(rawAbsPath))
	if !mediatypes.IsAccepted(ext) {
		logging.Debug("source %s: raw file %s has unaccepted extension, skipping", s.cfg.Name, rawAbsPath)
		return nil
	}

	if _, err := filesystem.StatWithRetry(rawAbsPath, filesystem.DefaultRetryConfig()); err != nil {
		return fmt.Errorf("stat raw file: %w", err)
	}

	rel := pathutil.Rel(s.cfg.RawData.Path, rawAbsPath)
	destPath := pathutil.Join(s.cfg.Path, rel)

	if _, err := filesystem.StatWithRetry(destPath, filesystem.DefaultRetryConfig()); err == nil {
		logging.Debug("source %s: raw file %s already imported at %s, skipping", s.cfg.Name, rawAbsPath, destPath)
		return nil
	}

	if ext == ".mp4" || ext == ".mp3" {
		if _, probeErr := s.converter.Duration(ctx, rawAbsPath); probeErr != nil {
			if s.raw != nil {
				s.raw.FeedbackCreationError(rawAbsPath)
			}
			logging.Warn("source %s: probing raw file %s failed, will retry: %v", s.cfg.Name, rawAbsPath, probeErr)
			return nil
		}
	}

	var file media.File
	err := s.withPrimarySuspended(func() error {
		converted := false
		if ext == ".mp4" {
			var convertErr error
			converted, convertErr = s.converter.Convert(ctx, rawAbsPath, destPath)
			if convertErr != nil {
				return fmt.Errorf("converting: %w", convertErr)
			}
		}
		if !converted {
			if copyErr := copyFile(rawAbsPath, destPath); copyErr != nil {
				return fmt.Errorf("copying: %w", copyErr)
			}
		}

		info, statErr := filesystem.StatWithRetry(destPath, filesystem.DefaultRetryConfig())
		if statErr != nil {
			return fmt.Errorf("stat imported file: %w", statErr)
		}

		f := media.New(destPath, s.cfg.Path, info.Size(), info.ModTime().UnixMilli())
		if f.HasDuration() {
			duration, probeErr := s.converter.Duration(ctx, destPath)
			if probeErr != nil {
				return fmt.Errorf("probing imported file: %w", probeErr)
			}
			f.Duration = duration
		}
		file = f
		return nil
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.files[file.Path] = file
	count := len(s.files)
	s.mu.Unlock()
	metrics.SourceFilesTotal.WithLabelValues(s.cfg.Name).Set(float64(count))
	if remaining := s.rawPending.Add(-1); remaining >= 0 {
		metrics.SourceRawPendingTotal.WithLabelValues(s.cfg.Name).Set(float64(remaining))
	} else {
		s.rawPending.Store(0)
	}

	s.publish(Event{Kind: EventCreated, File: file})
	return nil
}

// withPrimarySuspended stops the primary watcher for the duration of fn so
// an import's writes under the primary root never surface as an
// externally-observed change. Safe to call before the watcher has ever
// been started: Stop is then a harmless no-op and Start is skipped.
func (s *Source) withPrimarySuspended(fn func() error) error {
	wasRunning := s.primary.Stop()
	err := fn()
	if wasRunning {
		if startErr := s.primary.Start(); startErr != nil {
			if err == nil {
				err = startErr
			} else {
				logging.Error("source %s: restarting primary watcher after import failed: %v", s.cfg.Name, startErr)
			}
		}
	}
	return err
}
