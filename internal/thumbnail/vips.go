package thumbnail

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/davidbyttow/govips/v2/vips"
	"github.com/disintegration/imaging"

	"mediasync/internal/logging"
)

var (
	vipsInitialized bool
	vipsMu          sync.Mutex
	vipsAvailable   bool
)

// InitVips starts libvips with conservative memory settings. Call once at
// process startup before any Generator.Thumbnail call; safe to call more
// than once.
func InitVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		return
	}

	var level vips.LogLevel
	switch logging.GetLevel() {
	case logging.LevelDebug:
		level = vips.LogLevelInfo
	case logging.LevelWarn:
		level = vips.LogLevelError
	case logging.LevelError:
		level = vips.LogLevelCritical
	default:
		level = vips.LogLevelWarning
	}
	vips.LoggingSettings(func(domain string, lvl vips.LogLevel, msg string) {
		switch {
		case lvl <= vips.LogLevelCritical:
			logging.Error("thumbnail: [%s] %s", domain, msg)
		case lvl <= vips.LogLevelWarning:
			logging.Warn("thumbnail: [%s] %s", domain, msg)
		default:
			logging.Debug("thumbnail: [%s] %s", domain, msg)
		}
	}, level)

	vips.Startup(&vips.Config{
		ConcurrencyLevel: 1,
		MaxCacheMem:      50 * 1024 * 1024,
		MaxCacheSize:     100,
	})

	vipsInitialized = true
	vipsAvailable = true
	logging.Info("thumbnail: libvips initialized (version: %s)", vips.Version)
}

// ShutdownVips releases libvips resources. Safe to call even if InitVips
// was never called.
func ShutdownVips() {
	vipsMu.Lock()
	defer vipsMu.Unlock()

	if vipsInitialized {
		vips.Shutdown()
		vipsInitialized = false
		vipsAvailable = false
	}
}

// IsVipsAvailable reports whether libvips is initialized and usable.
func IsVipsAvailable() bool {
	vipsMu.Lock()
	defer vipsMu.Unlock()
	return vipsAvailable
}

// decodeWithVips loads path and shrinks it to fit within width x height
// during decode, far cheaper than decoding full-size then resizing.
func decodeWithVips(path string, width, height int) (image.Image, error) {
	if !IsVipsAvailable() {
		return nil, fmt.Errorf("libvips not available")
	}

	ref, err := vips.LoadImageFromFile(path, vips.NewImportParams())
	if err != nil {
		return nil, fmt.Errorf("vips load: %w", err)
	}
	defer ref.Close()

	if err := ref.Thumbnail(width, height, vips.InterestingNone); err != nil {
		return nil, fmt.Errorf("vips thumbnail: %w", err)
	}

	buf, _, err := ref.ExportJpeg(&vips.JpegExportParams{Quality: 90, OptimizeCoding: true})
	if err != nil {
		return nil, fmt.Errorf("vips export: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(buf), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode vips output: %w", err)
	}
	return img, nil
}
