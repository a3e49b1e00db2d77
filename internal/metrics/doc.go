// Package metrics provides Prometheus instrumentation for the media
// synchronization engine. All metrics are prefixed with "mediasync_" to
// avoid naming collisions with other applications.
//
// # Metric Categories
//
// ## HTTP Metrics
//
//   - HTTPRequestsTotal: Counter of total requests by method, path, and status
//   - HTTPRequestDuration: Histogram of request duration by method and path
//   - HTTPRequestsInFlight: Gauge of currently processing requests
//
// ## Filesystem Metrics
//
// Recorded through filesystem.Observer so the filesystem package never
// imports this one:
//
//   - FilesystemOperationDuration / FilesystemOperationErrors: per volume x operation
//   - FilesystemRetryAttempts / FilesystemRetrySuccess / FilesystemRetryFailures: NFS retry outcomes
//   - FilesystemStaleErrors: ESTALE occurrences
//   - FilesystemRetryDuration: total duration including retries
//
// ## Store Metrics
//
//   - DBQueryTotal / DBQueryDuration: per operation
//   - DBTransactionDuration: per batch kind
//   - DBConnectionsOpen, DBSizeBytes, DBStorageErrors
//
// ## Watcher Metrics
//
//   - WatcherEventsTotal / WatcherErrorsTotal / WatcherRestartsTotal / WatcherRunning
//   - CloudPollDuration / CloudPollRetryListSize: Cloud watcher poll-and-diff cycle
//
// ## Convert Metrics
//
//   - ConvertJobsTotal / ConvertJobDuration / ConvertJobsInProgress / ConvertProbeErrors
//
// ## Thumbnail Metrics
//
//   - ThumbnailGenerationsTotal / ThumbnailGenerationDuration
//   - ThumbnailGenerationDurationDetailed: per phase (decode/resize/encode/cache)
//   - ThumbnailFFmpegDuration, ThumbnailImageDecodeByFormat, ThumbnailMemoryUsageBytes
//   - ThumbnailCacheHits / ThumbnailCacheMisses / ThumbnailCacheInvalidations
//   - ThumbnailCacheSize / ThumbnailCacheCount
//
// ## Source / Manager Metrics
//
//   - SourceScanDuration, SourceFilesTotal, SourceRawPendingTotal
//   - SourceEventsProcessedTotal / SourceEventErrorsTotal
//   - ManagerReconcileDuration, ManagerLastReconcileTimestamp, ManagerSourcesRunning
//
// ## Memory Metrics
//
//   - MemoryUsageRatio, MemoryPaused, MemoryGCPauses
//
// ## Application Info
//
//   - AppInfo: Gauge with version, commit, and Go version labels
//
// # Usage
//
// Metrics are automatically registered with the default Prometheus registry
// using promauto. Mount the promhttp.Handler() on the metrics endpoint:
//
//	import "github.com/prometheus/client_golang/prometheus/promhttp"
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # Recording Metrics
//
//	import "mediasync/internal/metrics"
//
//	metrics.HTTPRequestsTotal.WithLabelValues("GET", "/list", "200").Inc()
//	metrics.HTTPRequestDuration.WithLabelValues("GET", "/list").Observe(0.123)
//	metrics.DBConnectionsOpen.Set(5)
//
// # Collector
//
// The package provides a [Collector] type that periodically gathers
// aggregate counts from a [StatsProvider] (typically the manager) and
// logs them for visibility between scrapes:
//
//	collector := metrics.NewCollector(statsProvider, 1*time.Minute)
//	collector.Start()
//	defer collector.Stop()
package metrics
