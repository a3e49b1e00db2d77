package metrics

import (
	"testing"
	"time"
)

type stubStatsProvider struct {
	stats Stats
	calls int
}

func (s *stubStatsProvider) GetStats() Stats {
	s.calls++
	return s.stats
}

func TestCollectorCollectsOnStart(t *testing.T) {
	stub := &stubStatsProvider{stats: Stats{TotalFiles: 10, TotalVideos: 6, TotalAudio: 0, TotalPhotos: 4}}
	c := NewCollector(stub, time.Hour)

	c.Start()
	defer c.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for stub.calls == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if stub.calls == 0 {
		t.Fatal("expected collect() to run at least once immediately on Start")
	}
}

func TestCollectorStopStopsLoop(t *testing.T) {
	stub := &stubStatsProvider{}
	c := NewCollector(stub, time.Millisecond)
	c.Start()
	time.Sleep(20 * time.Millisecond)
	c.Stop()

	callsAtStop := stub.calls
	time.Sleep(20 * time.Millisecond)
	if stub.calls > callsAtStop+1 {
		t.Errorf("collector kept running after Stop: calls went from %d to %d", callsAtStop, stub.calls)
	}
}

func TestCollectorNilProviderDoesNotPanic(t *testing.T) {
	c := &Collector{interval: time.Hour, stopChan: make(chan struct{})}
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("collect panicked with nil provider: %v", r)
		}
	}()
	c.collect()
}

func TestInitializeMetricsPrePopulatesLabels(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("InitializeMetrics panicked: %v", r)
		}
	}()
	InitializeMetrics()

	for _, file := range []string{"main", "wal", "shm"} {
		DBStorageErrors.WithLabelValues(file).Add(0)
	}

	volumes := []string{"media", "cache", "database", "unknown"}
	fsOps := []string{"read", "write", "stat", "readdir"}
	for _, vol := range volumes {
		for _, op := range fsOps {
			FilesystemOperationDuration.WithLabelValues(vol, op).Observe(0)
		}
	}

	for _, op := range []string{"stat", "open", "readdir", "write"} {
		for _, vol := range volumes {
			FilesystemRetryAttempts.WithLabelValues(op, vol).Add(0)
			FilesystemRetrySuccess.WithLabelValues(op, vol).Add(0)
			FilesystemRetryFailures.WithLabelValues(op, vol).Add(0)
			FilesystemStaleErrors.WithLabelValues(op, vol).Add(0)
			FilesystemRetryDuration.WithLabelValues(op, vol).Observe(0)
		}
	}

	for _, format := range []string{"jpeg", "png", "unknown"} {
		ThumbnailImageDecodeByFormat.WithLabelValues(format).Observe(0)
	}

	for _, k := range []string{"image", "video"} {
		for _, p := range []string{"decode", "resize", "encode", "cache"} {
			ThumbnailGenerationDurationDetailed.WithLabelValues(k, p).Observe(0)
		}
		ThumbnailMemoryUsageBytes.WithLabelValues(k).Observe(0)
	}

	for _, kind := range []string{"local", "cloud"} {
		for _, event := range []string{"created", "changed", "deleted", "renamed"} {
			WatcherEventsTotal.WithLabelValues("*", kind, event).Add(0)
		}
	}

	for _, path := range []string{"hevc_transcode", "remux"} {
		ConvertJobsTotal.WithLabelValues(path, "success").Add(0)
		ConvertJobDuration.WithLabelValues(path).Observe(0)
	}
}
