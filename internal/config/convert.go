package config

import (
	"time"

	"mediasync/internal/manager"
	"mediasync/internal/source"
)

// ManagerConfig converts the loaded configuration into the shape
// manager.New expects, applying Cloud.ScanInterval as every source's
// (and raw-data root's) poll interval per spec: the cloud scan interval
// applies uniformly to every CloudWatcher instance.
func (c *Config) ManagerConfig() manager.Config {
	sources := make([]source.Config, 0, len(c.Sources))
	for _, s := range c.Sources {
		sources = append(sources, s.toSourceConfig(c.Cloud.ScanInterval))
	}
	return manager.Config{
		Sources:           sources,
		ReconcileSchedule: c.Reconcile.Schedule,
	}
}

func (s SourceConfig) toSourceConfig(scanInterval time.Duration) source.Config {
	cfg := source.Config{
		Path:         s.Path,
		Name:         s.Name,
		Recursive:    s.Recursive,
		Cloud:        s.Cloud,
		PollInterval: scanInterval,
	}
	if s.RawData != nil {
		cfg.RawData = &source.RawDataConfig{
			Path:      s.RawData.Path,
			Recursive: s.RawData.Recursive,
			Cloud:     s.RawData.Cloud,
		}
	}
	return cfg
}
