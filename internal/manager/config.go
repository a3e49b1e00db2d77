package manager

import "mediasync/internal/source"

// Config describes the sources a Manager synchronizes and an optional
// schedule for re-running full reconciliation. Each source.Config carries
// its own Name, used for logging and metrics.
type Config struct {
	Sources []source.Config

	// ReconcileSchedule is an optional cron expression (as parsed by
	// robfig/cron) for re-running full reconciliation on a schedule, e.g.
	// "0 3 * * *" for nightly at 03:00. Empty disables scheduled
	// reconciliation; only the startup reconciliation runs.
	ReconcileSchedule string
}
