package source

import "time"

// RawDataConfig describes an optional staging root paired with a Source:
// files appearing here are lazily imported (and conditionally transcoded)
// into the Source's primary root.
type RawDataConfig struct {
	Path      string
	Recursive bool
	Cloud     bool
}

// Config is the immutable description of one source root.
type Config struct {
	Path         string
	Name         string
	Recursive    bool
	Cloud        bool
	RawData      *RawDataConfig
	PollInterval time.Duration
}
