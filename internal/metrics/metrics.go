package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Filesystem metrics, recorded through filesystem.Observer to avoid an import cycle.
var (
	FilesystemOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_filesystem_operation_duration_seconds",
			Help:    "Filesystem operation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"volume", "operation"},
	)

	FilesystemOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_filesystem_operation_errors_total",
			Help: "Total number of filesystem operation errors",
		},
		[]string{"volume", "operation"},
	)

	FilesystemRetryAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_filesystem_retry_attempts_total",
			Help: "Total number of NFS stale-handle retry attempts",
		},
		[]string{"retry_op", "volume"},
	)

	FilesystemRetrySuccess = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_filesystem_retry_success_total",
			Help: "Total number of filesystem operations that succeeded after retrying",
		},
		[]string{"retry_op", "volume"},
	)

	FilesystemRetryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_filesystem_retry_failures_total",
			Help: "Total number of filesystem operations that exhausted retries",
		},
		[]string{"retry_op", "volume"},
	)

	FilesystemStaleErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_filesystem_stale_errors_total",
			Help: "Total number of ESTALE errors encountered",
		},
		[]string{"retry_op", "volume"},
	)

	FilesystemRetryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_filesystem_retry_duration_seconds",
			Help:    "Total duration of a filesystem operation including retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"retry_op", "volume"},
	)
)

// Store metrics (internal/store: sqlite3 + golang-migrate)
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_store_queries_total",
			Help: "Total number of store queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_store_query_duration_seconds",
			Help:    "Store query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_store_transaction_duration_seconds",
			Help:    "Store batch transaction duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"kind"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_store_connections_open",
			Help: "Number of open store connections",
		},
	)

	DBSizeBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediasync_store_size_bytes",
			Help: "Size of SQLite database files in bytes",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)

	DBStorageErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_store_storage_errors_total",
			Help: "Total number of errors touching the underlying SQLite files",
		},
		[]string{"file"}, // "main", "wal", "shm"
	)
)

// Watcher metrics (internal/watcher: Local via fsnotify, Cloud via poll-and-diff)
var (
	WatcherEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_watcher_events_total",
			Help: "Total number of file-change events delivered by a watcher",
		},
		[]string{"source", "kind", "event"}, // kind: "local"|"cloud"; event: "created"|"changed"|"deleted"|"renamed"
	)

	WatcherErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_watcher_errors_total",
			Help: "Total number of watcher errors surfaced to FeedbackCreationError",
		},
		[]string{"source", "kind"},
	)

	WatcherRestartsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_watcher_restarts_total",
			Help: "Total number of times a watcher auto-restarted after an unexpected stop",
		},
		[]string{"source", "kind"},
	)

	WatcherRunning = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediasync_watcher_running",
			Help: "Whether a watcher is currently running (1) or stopped (0)",
		},
		[]string{"source", "kind"},
	)

	CloudPollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_cloud_poll_duration_seconds",
			Help:    "Duration of a cloud watcher poll-and-diff cycle",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"source"},
	)

	CloudPollRetryListSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediasync_cloud_poll_retry_list_size",
			Help: "Number of entries currently on a cloud watcher's retry list",
		},
		[]string{"source"},
	)
)

// Convert metrics (internal/convert: ffmpeg/ffprobe transcoding)
var (
	ConvertJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_convert_jobs_total",
			Help: "Total number of convert jobs",
		},
		[]string{"codec_path", "status"}, // codec_path: "hevc_transcode"|"remux"
	)

	ConvertJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_convert_job_duration_seconds",
			Help:    "Convert job duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600, 1800},
		},
		[]string{"codec_path"},
	)

	ConvertJobsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_convert_jobs_in_progress",
			Help: "Number of convert jobs currently running",
		},
	)

	ConvertProbeErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasync_convert_probe_errors_total",
			Help: "Total number of ffprobe invocation errors",
		},
	)
)

// Thumbnail metrics (internal/thumbnail: govips/imaging for images, ffmpeg frame extraction for video)
var (
	ThumbnailGenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_thumbnail_generations_total",
			Help: "Total number of thumbnail generations",
		},
		[]string{"kind", "status"}, // kind: "image"|"video"
	)

	ThumbnailGenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_thumbnail_generation_duration_seconds",
			Help:    "Thumbnail generation duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"kind"},
	)

	ThumbnailGenerationDurationDetailed = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_thumbnail_generation_phase_duration_seconds",
			Help:    "Thumbnail generation duration broken down by phase",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
		[]string{"kind", "phase"}, // phase: "decode"|"resize"|"encode"|"cache"
	)

	ThumbnailFFmpegDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_thumbnail_ffmpeg_duration_seconds",
			Help:    "Duration of ffmpeg frame-extraction invocations for video thumbnails",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	ThumbnailImageDecodeByFormat = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_thumbnail_image_decode_seconds",
			Help:    "Image decode duration by source format",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"format"},
	)

	ThumbnailMemoryUsageBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_thumbnail_memory_usage_bytes",
			Help:    "Approximate peak memory used while generating a thumbnail",
			Buckets: prometheus.ExponentialBuckets(1<<20, 2, 10),
		},
		[]string{"kind"},
	)

	ThumbnailCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasync_thumbnail_cache_hits_total",
			Help: "Total number of thumbnail cache hits",
		},
	)

	ThumbnailCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasync_thumbnail_cache_misses_total",
			Help: "Total number of thumbnail cache misses",
		},
	)

	ThumbnailCacheInvalidations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasync_thumbnail_cache_invalidations_total",
			Help: "Total number of thumbnails evicted because the source file changed",
		},
	)

	ThumbnailCacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_thumbnail_cache_size_bytes",
			Help: "Total size of the thumbnail cache in bytes",
		},
	)

	ThumbnailCacheCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_thumbnail_cache_count",
			Help: "Number of thumbnails in the cache",
		},
	)
)

// Source / Manager metrics (internal/source, internal/manager)
var (
	SourceScanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediasync_source_scan_duration_seconds",
			Help:    "Duration of a source's initial or reconciliation scan",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"source", "kind"}, // kind: "initial"|"reconcile"
	)

	SourceFilesTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediasync_source_files_total",
			Help: "Number of files currently tracked for a source",
		},
		[]string{"source"},
	)

	SourceRawPendingTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediasync_source_raw_pending_total",
			Help: "Number of raw-data files awaiting processing for a source",
		},
		[]string{"source"},
	)

	SourceEventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_source_events_processed_total",
			Help: "Total number of watcher events processed by a source",
		},
		[]string{"source", "watcher", "event"}, // watcher: "primary"|"raw"
	)

	SourceEventErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediasync_source_event_errors_total",
			Help: "Total number of errors while handling a watcher event",
		},
		[]string{"source", "watcher"},
	)

	ManagerReconcileDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediasync_manager_reconcile_duration_seconds",
			Help:    "Duration of startup or periodic full reconciliation across all sources",
			Buckets: []float64{0.1, 1, 5, 10, 30, 60, 300, 900},
		},
	)

	ManagerLastReconcileTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_manager_last_reconcile_timestamp",
			Help: "Unix timestamp of the last completed reconciliation",
		},
	)

	ManagerSourcesRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_manager_sources_running",
			Help: "Number of sources currently being watched",
		},
	)
)

// Memory metrics (internal/memory)
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_memory_usage_ratio",
			Help: "Current heap allocation as a ratio of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediasync_memory_paused",
			Help: "Whether processing is currently paused due to memory pressure (1 = paused)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediasync_memory_forced_gc_total",
			Help: "Total number of garbage collections forced by the memory monitor",
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediasync_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
