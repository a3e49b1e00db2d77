package config

import "time"

// RawDataConfig mirrors source.RawDataConfig in a viper-friendly shape.
type RawDataConfig struct {
	Path      string `mapstructure:"path"`
	Recursive bool   `mapstructure:"recursive"`
	Cloud     bool   `mapstructure:"cloud"`
}

// SourceConfig mirrors source.Config in a viper-friendly shape.
type SourceConfig struct {
	Path      string         `mapstructure:"path"`
	Name      string         `mapstructure:"name"`
	Recursive bool           `mapstructure:"recursive"`
	Cloud     bool           `mapstructure:"cloud"`
	RawData   *RawDataConfig `mapstructure:"rawData"`
}

// CloudConfig holds settings shared by every CloudWatcher instance.
type CloudConfig struct {
	ScanInterval time.Duration `mapstructure:"scanInterval"`
}

// FFmpegConfig locates the ffmpeg/ffprobe binaries used for duration
// probing, transcoding and video-thumbnail extraction.
type FFmpegConfig struct {
	Path      string `mapstructure:"path"`
	ProbePath string `mapstructure:"probePath"`
}

// StoreConfig locates the persistent metadata store.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ThumbnailConfig controls thumbnail generation and caching.
type ThumbnailConfig struct {
	Dir     string `mapstructure:"dir"`
	Enabled bool   `mapstructure:"enabled"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	MetricsPort string `mapstructure:"metricsPort"`
}

// ReconcileConfig controls the manager's periodic full reconciliation.
type ReconcileConfig struct {
	Schedule string `mapstructure:"schedule"`
}

// Config is the complete, validated application configuration.
type Config struct {
	Sources   []SourceConfig  `mapstructure:"sources"`
	Cloud     CloudConfig     `mapstructure:"cloud"`
	FFmpeg    FFmpegConfig    `mapstructure:"ffmpeg"`
	Store     StoreConfig     `mapstructure:"store"`
	Thumbnail ThumbnailConfig `mapstructure:"thumbnail"`
	Server    ServerConfig    `mapstructure:"server"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}
