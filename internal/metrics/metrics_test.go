package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsAreRegistered(t *testing.T) {
	collectors := []struct {
		name string
		c    prometheus.Collector
	}{
		{"HTTPRequestsTotal", HTTPRequestsTotal},
		{"HTTPRequestDuration", HTTPRequestDuration},
		{"HTTPRequestsInFlight", HTTPRequestsInFlight},
		{"FilesystemOperationDuration", FilesystemOperationDuration},
		{"FilesystemOperationErrors", FilesystemOperationErrors},
		{"FilesystemRetryAttempts", FilesystemRetryAttempts},
		{"FilesystemRetrySuccess", FilesystemRetrySuccess},
		{"FilesystemRetryFailures", FilesystemRetryFailures},
		{"FilesystemStaleErrors", FilesystemStaleErrors},
		{"FilesystemRetryDuration", FilesystemRetryDuration},
		{"DBQueryTotal", DBQueryTotal},
		{"DBQueryDuration", DBQueryDuration},
		{"DBTransactionDuration", DBTransactionDuration},
		{"DBConnectionsOpen", DBConnectionsOpen},
		{"DBSizeBytes", DBSizeBytes},
		{"DBStorageErrors", DBStorageErrors},
		{"WatcherEventsTotal", WatcherEventsTotal},
		{"WatcherErrorsTotal", WatcherErrorsTotal},
		{"WatcherRestartsTotal", WatcherRestartsTotal},
		{"WatcherRunning", WatcherRunning},
		{"CloudPollDuration", CloudPollDuration},
		{"CloudPollRetryListSize", CloudPollRetryListSize},
		{"ConvertJobsTotal", ConvertJobsTotal},
		{"ConvertJobDuration", ConvertJobDuration},
		{"ConvertJobsInProgress", ConvertJobsInProgress},
		{"ConvertProbeErrors", ConvertProbeErrors},
		{"ThumbnailGenerationsTotal", ThumbnailGenerationsTotal},
		{"ThumbnailGenerationDuration", ThumbnailGenerationDuration},
		{"ThumbnailGenerationDurationDetailed", ThumbnailGenerationDurationDetailed},
		{"ThumbnailFFmpegDuration", ThumbnailFFmpegDuration},
		{"ThumbnailImageDecodeByFormat", ThumbnailImageDecodeByFormat},
		{"ThumbnailMemoryUsageBytes", ThumbnailMemoryUsageBytes},
		{"ThumbnailCacheHits", ThumbnailCacheHits},
		{"ThumbnailCacheMisses", ThumbnailCacheMisses},
		{"ThumbnailCacheInvalidations", ThumbnailCacheInvalidations},
		{"ThumbnailCacheSize", ThumbnailCacheSize},
		{"ThumbnailCacheCount", ThumbnailCacheCount},
		{"SourceScanDuration", SourceScanDuration},
		{"SourceFilesTotal", SourceFilesTotal},
		{"SourceRawPendingTotal", SourceRawPendingTotal},
		{"SourceEventsProcessedTotal", SourceEventsProcessedTotal},
		{"SourceEventErrorsTotal", SourceEventErrorsTotal},
		{"ManagerReconcileDuration", ManagerReconcileDuration},
		{"ManagerLastReconcileTimestamp", ManagerLastReconcileTimestamp},
		{"ManagerSourcesRunning", ManagerSourcesRunning},
		{"MemoryUsageRatio", MemoryUsageRatio},
		{"MemoryPaused", MemoryPaused},
		{"MemoryGCPauses", MemoryGCPauses},
		{"AppInfo", AppInfo},
	}

	for _, tc := range collectors {
		t.Run(tc.name, func(t *testing.T) {
			if tc.c == nil {
				t.Fatalf("%s is nil", tc.name)
			}
			ch := make(chan prometheus.Metric, 16)
			go func() {
				tc.c.Collect(ch)
				close(ch)
			}()
			for range ch {
			}
		})
	}
}

func TestHTTPMetricsRecordValues(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/list", "200").Inc()
	HTTPRequestDuration.WithLabelValues("GET", "/list").Observe(0.05)
	HTTPRequestsInFlight.Inc()
	HTTPRequestsInFlight.Dec()
}

func TestFilesystemMetricsRecordValues(t *testing.T) {
	FilesystemOperationDuration.WithLabelValues("media", "read").Observe(0.001)
	FilesystemOperationDuration.WithLabelValues("cache", "write").Observe(0.01)
	FilesystemRetryAttempts.WithLabelValues("stat", "media").Inc()
	FilesystemRetrySuccess.WithLabelValues("stat", "media").Inc()
	FilesystemStaleErrors.WithLabelValues("open", "media").Inc()
}

func TestWatcherMetricsRecordValues(t *testing.T) {
	WatcherEventsTotal.WithLabelValues("movies", "local", "created").Inc()
	WatcherErrorsTotal.WithLabelValues("movies", "local").Inc()
	WatcherRunning.WithLabelValues("movies", "local").Set(1)
	CloudPollDuration.WithLabelValues("movies").Observe(1.2)
	CloudPollRetryListSize.WithLabelValues("movies").Set(3)
}

func TestConvertMetricsRecordValues(t *testing.T) {
	ConvertJobsTotal.WithLabelValues("hevc_transcode", "success").Inc()
	ConvertJobDuration.WithLabelValues("remux").Observe(12.5)
	ConvertJobsInProgress.Inc()
	ConvertJobsInProgress.Dec()
}

func TestThumbnailMetricsRecordValues(t *testing.T) {
	ThumbnailGenerationsTotal.WithLabelValues("image", "success").Inc()
	ThumbnailGenerationDuration.WithLabelValues("video").Observe(0.8)
	ThumbnailGenerationDurationDetailed.WithLabelValues("image", "resize").Observe(0.05)
	ThumbnailFFmpegDuration.WithLabelValues("video").Observe(2.5)
	ThumbnailImageDecodeByFormat.WithLabelValues("jpeg").Observe(0.01)
	ThumbnailMemoryUsageBytes.WithLabelValues("video").Observe(50 * 1024 * 1024)
	ThumbnailCacheHits.Inc()
	ThumbnailCacheMisses.Inc()
	ThumbnailCacheInvalidations.Inc()
}

func TestSourceAndManagerMetricsRecordValues(t *testing.T) {
	SourceScanDuration.WithLabelValues("movies", "initial").Observe(4.2)
	SourceFilesTotal.WithLabelValues("movies").Set(120)
	SourceRawPendingTotal.WithLabelValues("movies").Set(2)
	SourceEventsProcessedTotal.WithLabelValues("movies", "primary", "changed").Inc()
	SourceEventErrorsTotal.WithLabelValues("movies", "raw").Inc()
	ManagerReconcileDuration.Observe(30)
	ManagerLastReconcileTimestamp.Set(1700000000)
	ManagerSourcesRunning.Set(2)
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.0.0", "abc123", "go1.25")
}
