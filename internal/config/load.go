package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"mediasync/internal/logging"
)

// Build-time variables, injected via -ldflags the same way the teacher
// stamps its binary.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

const envPrefix = "MEDIASYNC"

// Load reads configuration from configPath (if non-empty and present)
// and MEDIASYNC_-prefixed environment variables, applies defaults, and
// prepares the store and thumbnail directories.
func Load(configPath string) (*Config, error) {
	printBanner()
	logSystemInfo()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if configPath != "" {
		if _, statErr := os.Stat(configPath); statErr != nil {
			logging.Warn("config: %s not found, using defaults and environment", configPath)
		} else {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
			}
			logging.Info("config: loaded %s", configPath)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshaling: %w", err)
	}

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  sources:           %d configured", len(cfg.Sources))
	for _, s := range cfg.Sources {
		raw := "none"
		if s.RawData != nil {
			raw = s.RawData.Path
		}
		logging.Info("    - %s: %s (recursive=%v cloud=%v rawData=%s)", s.Name, s.Path, s.Recursive, s.Cloud, raw)
	}
	logging.Info("  cloud.scanInterval: %s", cfg.Cloud.ScanInterval)
	logging.Info("  ffmpeg.path:        %s", cfg.FFmpeg.Path)
	logging.Info("  ffmpeg.probePath:   %s", cfg.FFmpeg.ProbePath)
	logging.Info("  store.path:         %s", cfg.Store.Path)
	logging.Info("  thumbnail.dir:      %s", cfg.Thumbnail.Dir)
	logging.Info("  thumbnail.enabled:  %v", cfg.Thumbnail.Enabled)
	logging.Info("  server.port:        %s", cfg.Server.Port)
	logging.Info("  reconcile.schedule: %q", cfg.Reconcile.Schedule)
	logging.Info("  LOG_LEVEL:          %s", logging.GetLevel())

	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("config: at least one source must be configured")
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	storeDir := filepath.Dir(cfg.Store.Path)
	if err := ensureDirectory(storeDir, "store"); err != nil {
		return nil, fmt.Errorf("config: store directory: %w", err)
	}
	if err := testWriteAccess(storeDir); err != nil {
		return nil, fmt.Errorf("config: store directory is not writable: %w", err)
	}
	logging.Info("  [OK] store directory is writable: %s", storeDir)

	cfg.Thumbnail.Enabled = cfg.Thumbnail.Enabled && setupOptionalDir(cfg.Thumbnail.Dir, "thumbnail")
	logging.Info("  thumbnails: %s", enabledString(cfg.Thumbnail.Enabled))

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cloud.scanInterval", 180*time.Second)
	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.probePath", "ffprobe")
	v.SetDefault("store.path", "./data/mediasync.db")
	v.SetDefault("thumbnail.dir", "./data/thumbnails")
	v.SetDefault("thumbnail.enabled", true)
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.metricsPort", "9090")
	v.SetDefault("reconcile.schedule", "")
}

func ensureDirectory(path, name string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("creating %s directory: %w", name, err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stating %s directory: %w", name, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s path exists but is not a directory", name)
	}
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("config: failed to remove write test file %s: %v", testFile, err)
	}
	return nil
}

func setupOptionalDir(path, name string) bool {
	if err := os.MkdirAll(path, 0o755); err != nil {
		logging.Warn("config: failed to create %s directory: %v, disabling", name, err)
		return false
	}
	if err := testWriteAccess(path); err != nil {
		logging.Warn("config: %s directory not writable: %v, disabling", name, err)
		return false
	}
	return true
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

func printBanner() {
	logging.Info("------------------------------------------------------------")
	logging.Info("mediasync %s (commit %s, built %s)", Version, Commit, BuildTime)
	logging.Info("------------------------------------------------------------")
}

func logSystemInfo() {
	logging.Info("  Go version:     %s", runtime.Version())
	logging.Info("  OS/Arch:        %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available: %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:     %d", runtime.GOMAXPROCS(0))
}
