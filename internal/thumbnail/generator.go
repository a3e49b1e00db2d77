package thumbnail

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"mediasync/internal/logging"
	"mediasync/internal/mediatypes"
	"mediasync/internal/memory"
	"mediasync/internal/metrics"
	"mediasync/internal/store"
)

const (
	maxDimension = 200
	jpegQuality  = 80
)

// Generator derives and caches thumbnails for store records. The zero
// value is unusable; construct with New.
type Generator struct {
	cacheDir   string
	ffmpegPath string
	memory     *memory.Monitor

	inflight  map[string]*sync.WaitGroup
	inflightL sync.Mutex

	cacheBytes atomic.Int64
	cacheCount atomic.Int64
}

// New constructs a Generator caching under cacheDir, creating it if
// necessary, and primes the cache size/count gauges from what's already
// on disk. ffmpegPath empty falls back to "ffmpeg" on PATH.
func New(cacheDir, ffmpegPath string) *Generator {
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logging.Warn("thumbnail: failed to create cache dir %s: %v", cacheDir, err)
	}
	g := &Generator{
		cacheDir:   cacheDir,
		ffmpegPath: ffmpegPath,
		inflight:   make(map[string]*sync.WaitGroup),
	}
	g.primeCacheStats()
	return g
}

// SetMemoryMonitor wires a memory.Monitor that decoding and frame-extraction
// wait on before doing any work, so thumbnail generation backs off under
// memory pressure instead of piling up more decoded image buffers. A nil
// monitor (the default) means no backpressure is applied.
func (g *Generator) SetMemoryMonitor(m *memory.Monitor) {
	g.memory = m
}

func (g *Generator) primeCacheStats() {
	entries, err := os.ReadDir(g.cacheDir)
	if err != nil {
		return
	}
	var count, size int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if info, err := e.Info(); err == nil {
			count++
			size += info.Size()
		}
	}
	g.cacheCount.Store(count)
	g.cacheBytes.Store(size)
	metrics.ThumbnailCacheCount.Set(float64(count))
	metrics.ThumbnailCacheSize.Set(float64(size))
}

func (g *Generator) ffmpeg() string {
	if g.ffmpegPath != "" {
		return g.ffmpegPath
	}
	return "ffmpeg"
}

// cacheKey digests path+size+mtime so a changed file (different size or
// mtime) misses cache without requiring an explicit invalidation.
func cacheKey(path string, size, mtimeMillis int64) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", path, size, mtimeMillis)))
	return fmt.Sprintf("%x", sum[:16])
}

func (g *Generator) cachePath(key string) string {
	return filepath.Join(g.cacheDir, key+".jpg")
}

// Thumbnail returns a cached or freshly generated JPEG thumbnail for rec,
// along with its content type ("image/jpeg"). Photo records are decoded
// and resized directly; video records have a single frame extracted via
// ffmpeg at 10% of their duration first.
func (g *Generator) Thumbnail(ctx context.Context, rec store.Record) ([]byte, string, error) {
	key := cacheKey(rec.Path, rec.Length, rec.Date)
	cachePath := g.cachePath(key)

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return data, "image/jpeg", nil
	}
	metrics.ThumbnailCacheMisses.Inc()

	data, err := g.generateSingleFlight(ctx, rec, key, cachePath)
	if err != nil {
		return nil, "", err
	}
	return data, "image/jpeg", nil
}

// generateSingleFlight ensures concurrent requests for the same cache key
// collapse into a single generation, mirroring the teacher's
// mutex-guarded double-checked cache read.
func (g *Generator) generateSingleFlight(ctx context.Context, rec store.Record, key, cachePath string) ([]byte, error) {
	g.inflightL.Lock()
	if wg, ok := g.inflight[key]; ok {
		g.inflightL.Unlock()
		wg.Wait()
		return os.ReadFile(cachePath)
	}
	wg := &sync.WaitGroup{}
	wg.Add(1)
	g.inflight[key] = wg
	g.inflightL.Unlock()

	defer func() {
		g.inflightL.Lock()
		delete(g.inflight, key)
		g.inflightL.Unlock()
		wg.Done()
	}()

	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	return g.generate(ctx, rec, cachePath)
}

func (g *Generator) generate(ctx context.Context, rec store.Record, cachePath string) ([]byte, error) {
	if g.memory != nil && !g.memory.WaitIfPaused() {
		return nil, fmt.Errorf("thumbnail: generation aborted, memory monitor stopped")
	}

	start := time.Now()
	kind := "image"
	if rec.MediaType() == mediatypes.ClassVideo {
		kind = "video"
	}

	decodeStart := time.Now()
	var img image.Image
	var err error
	switch rec.MediaType() {
	case mediatypes.ClassPhoto:
		img, err = g.decodeImage(rec.Path)
	case mediatypes.ClassVideo:
		img, err = g.extractVideoFrame(ctx, rec.Path, rec.Duration)
	default:
		err = fmt.Errorf("unsupported media type %q for thumbnailing", rec.MediaType())
	}
	decodeDuration := time.Since(decodeStart)
	metrics.ThumbnailGenerationDurationDetailed.WithLabelValues(kind, "decode").Observe(decodeDuration.Seconds())
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(rec.Path)), ".")
	if format != "" {
		metrics.ThumbnailImageDecodeByFormat.WithLabelValues(format).Observe(decodeDuration.Seconds())
	}

	metrics.ThumbnailGenerationDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("thumbnail: generating for %s: %w", rec.Path, err)
	}

	resizeStart := time.Now()
	thumb := imaging.Fit(img, maxDimension, maxDimension, imaging.Lanczos)
	metrics.ThumbnailGenerationDurationDetailed.WithLabelValues(kind, "resize").Observe(time.Since(resizeStart).Seconds())

	bounds := img.Bounds()
	metrics.ThumbnailMemoryUsageBytes.WithLabelValues(kind).Observe(float64(bounds.Dx() * bounds.Dy() * 4))

	encodeStart := time.Now()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(kind, "error").Inc()
		return nil, fmt.Errorf("thumbnail: encoding %s: %w", rec.Path, err)
	}
	metrics.ThumbnailGenerationDurationDetailed.WithLabelValues(kind, "encode").Observe(time.Since(encodeStart).Seconds())

	cacheStart := time.Now()
	if err := os.WriteFile(cachePath, buf.Bytes(), 0o644); err != nil {
		logging.Warn("thumbnail: failed to cache %s: %v", cachePath, err)
	} else {
		g.cacheCount.Add(1)
		g.cacheBytes.Add(int64(buf.Len()))
		metrics.ThumbnailCacheCount.Set(float64(g.cacheCount.Load()))
		metrics.ThumbnailCacheSize.Set(float64(g.cacheBytes.Load()))
	}
	metrics.ThumbnailGenerationDurationDetailed.WithLabelValues(kind, "cache").Observe(time.Since(cacheStart).Seconds())

	metrics.ThumbnailGenerationsTotal.WithLabelValues(kind, "success").Inc()
	return buf.Bytes(), nil
}

// decodeImage tries libvips first (cheapest: it shrinks during decode),
// then falls back to imaging's decoder, then the standard library's
// format-registry decoder for anything imaging itself rejects.
func (g *Generator) decodeImage(path string) (image.Image, error) {
	if img, err := decodeWithVips(path, maxDimension, maxDimension); err == nil {
		return img, nil
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, fmt.Errorf("opening %s: %w", path, openErr)
	}
	defer file.Close()

	img, _, decodeErr := image.Decode(file)
	if decodeErr != nil {
		return nil, fmt.Errorf("no decoder accepted %s (imaging: %v, stdlib: %v)", path, err, decodeErr)
	}
	return img, nil
}

// extractVideoFrame pulls a single frame via ffmpeg at 10% of duration.
// Falls back to the first frame if seeking that far fails (very short
// clips, or a duration of zero).
func (g *Generator) extractVideoFrame(ctx context.Context, path string, duration float64) (image.Image, error) {
	seekTo := duration * 0.1

	img, err := g.ffmpegFrame(ctx, path, seekTo)
	if err == nil {
		return img, nil
	}
	if seekTo == 0 {
		return nil, err
	}
	return g.ffmpegFrame(ctx, path, 0)
}

func (g *Generator) ffmpegFrame(ctx context.Context, path string, seekSeconds float64) (image.Image, error) {
	start := time.Now()
	args := []string{}
	if seekSeconds > 0 {
		args = append(args, "-ss", fmt.Sprintf("%.3f", seekSeconds))
	}
	args = append(args, "-i", path, "-frames:v", "1", "-f", "image2pipe", "-vcodec", "png", "-")

	cmd := exec.CommandContext(ctx, g.ffmpeg(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	metrics.ThumbnailFFmpegDuration.WithLabelValues("video").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("ffmpeg frame extraction: %w: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decoding ffmpeg frame: %w", err)
	}
	return img, nil
}

// Invalidate evicts the thumbnail cached for path at the given size and
// mtime; entries cached for other sizes or mtimes of the same path are left
// in place. Safe to call whether or not one exists; the size/mtime-keyed
// cache name means this is an optimization (prompt eviction) rather than a
// correctness requirement.
func (g *Generator) Invalidate(path string, size, mtimeMillis int64) {
	key := cacheKey(path, size, mtimeMillis)
	cachePath := g.cachePath(key)

	info, statErr := os.Stat(cachePath)
	if err := os.Remove(cachePath); err == nil {
		metrics.ThumbnailCacheInvalidations.Inc()
		g.cacheCount.Add(-1)
		if statErr == nil {
			g.cacheBytes.Add(-info.Size())
		}
		metrics.ThumbnailCacheCount.Set(float64(g.cacheCount.Load()))
		metrics.ThumbnailCacheSize.Set(float64(g.cacheBytes.Load()))
	}
}
