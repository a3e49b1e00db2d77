package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Store storage health ---
	for _, file := range []string{"main", "wal", "shm"} {
		DBStorageErrors.WithLabelValues(file)
	}

	// --- Filesystem operation metrics (per volume x operation) ---
	volumes := []string{"media", "cache", "database", "unknown"}
	fsOps := []string{"read", "write", "stat", "readdir"}

	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op)
			FilesystemOperationErrors.WithLabelValues(vol, op)
		}
	}

	// --- Filesystem retry metrics (per retry-operation x volume) ---
	retryOps := []string{"stat", "open", "readdir", "write"}

	for _, op := range retryOps {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol)
			FilesystemRetrySuccess.WithLabelValues(op, vol)
			FilesystemRetryFailures.WithLabelValues(op, vol)
			FilesystemStaleErrors.WithLabelValues(op, vol)
			FilesystemRetryDuration.WithLabelValues(op, vol)
		}
	}

	// --- Thumbnail image decode by format ---
	for _, format := range []string{"jpeg", "png", "unknown"} {
		ThumbnailImageDecodeByFormat.WithLabelValues(format)
	}

	// --- Thumbnail generation detailed phases ---
	thumbKinds := []string{"image", "video"}
	phases := []string{"decode", "resize", "encode", "cache"}

	for _, k := range thumbKinds {
		for _, p := range phases {
			ThumbnailGenerationDurationDetailed.WithLabelValues(k, p)
		}
		ThumbnailMemoryUsageBytes.WithLabelValues(k)
		ThumbnailFFmpegDuration.WithLabelValues(k)
		ThumbnailGenerationsTotal.WithLabelValues(k, "success")
		ThumbnailGenerationsTotal.WithLabelValues(k, "error")
		ThumbnailGenerationsTotal.WithLabelValues(k, "error_not_found")
		ThumbnailGenerationsTotal.WithLabelValues(k, "error_unsupported")
		ThumbnailGenerationsTotal.WithLabelValues(k, "error_encode")
	}

	// --- Store query operations ---
	for _, op := range []string{"upsert", "get_by_id", "get_by_path", "get_by_paths", "get_all",
		"get_by_flag", "get_by_rating", "search_by_label", "get_created_since", "get_updated_since",
		"delete", "delete_many", "update_path"} {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	for _, t := range []string{"commit", "rollback", "batch"} {
		DBTransactionDuration.WithLabelValues(t)
	}

	// --- Watcher metrics (per kind x event) ---
	for _, kind := range []string{"local", "cloud"} {
		for _, event := range []string{"created", "changed", "deleted", "renamed"} {
			WatcherEventsTotal.WithLabelValues("*", kind, event)
		}
	}

	// --- Convert metrics ---
	for _, path := range []string{"hevc_transcode", "remux"} {
		ConvertJobsTotal.WithLabelValues(path, "success")
		ConvertJobsTotal.WithLabelValues(path, "error")
		ConvertJobDuration.WithLabelValues(path)
	}
}
