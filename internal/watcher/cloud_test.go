package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestCloudDetectsCreatedAndDeleted(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "a.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewCloud(Config{Name: "test", Root: root, PollInterval: 20 * time.Millisecond})
	if err := c.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer c.Stop()

	// First tick only establishes the baseline snapshot (no previous to
	// diff against), so no events are expected yet.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(root, "b.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(root, "a.mp4")); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	sawCreated, sawDeleted := false, false
	for !sawCreated || !sawDeleted {
		select {
		case ev := <-c.Events():
			if ev.Created != nil && ev.Created.Name == "b.mp4" {
				sawCreated = true
			}
			if ev.Deleted != nil && ev.Deleted.Name == "a.mp4" {
				sawDeleted = true
			}
		case <-deadline:
			t.Fatalf("timed out: sawCreated=%v sawDeleted=%v", sawCreated, sawDeleted)
		}
	}
}

func TestCloudStopReturnsFalseWhenNotStarted(t *testing.T) {
	c := NewCloud(Config{Name: "test", Root: t.TempDir()})
	if c.Stop() {
		t.Error("expected Stop on a never-started Cloud to return false")
	}
}

func TestCloudFeedbackCreationErrorTracked(t *testing.T) {
	c := NewCloud(Config{Name: "test", Root: t.TempDir()})
	c.FeedbackCreationError("/some/path")
	if len(c.retryList) != 1 {
		t.Errorf("expected retry list to have 1 entry, got %d", len(c.retryList))
	}
}

func TestCloudNonReentrant(t *testing.T) {
	root := t.TempDir()
	c := NewCloud(Config{Name: "test", Root: root, PollInterval: time.Hour})
	c.running = true
	c.scanning = true
	c.tick()
	defer c.Stop()
	if !c.scanning {
		t.Error("expected scanning flag to remain true when tick was skipped")
	}
}
