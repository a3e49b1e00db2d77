package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitForEvent(t *testing.T, events <-chan FileChangeEvent, timeout time.Duration) FileChangeEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(timeout):
		t.Fatal("timed out waiting for event")
		return FileChangeEvent{}
	}
}

func TestLocalStartStop(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(Config{Name: "test", Root: root, Recursive: true})

	if err := l.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !l.Stop() {
		t.Error("expected Stop to report the watcher had been running")
	}
	if l.Stop() {
		t.Error("expected a second Stop to report false")
	}
}

func TestLocalDetectsCreate(t *testing.T) {
	root := t.TempDir()
	l := NewLocal(Config{Name: "test", Root: root, Recursive: true})

	if err := l.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer l.Stop()

	target := filepath.Join(root, "new.mp4")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev := waitForEvent(t, l.Events(), 2*time.Second)
	if ev.Created == nil {
		t.Fatalf("expected a Created event, got %+v", ev)
	}
	if ev.Created.Name != "new.mp4" {
		t.Errorf("Created.Name = %q, want new.mp4", ev.Created.Name)
	}
}

func TestLocalDetectsDelete(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "gone.mp4")
	if err := os.WriteFile(target, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := NewLocal(Config{Name: "test", Root: root, Recursive: true})
	if err := l.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer l.Stop()

	if err := os.Remove(target); err != nil {
		t.Fatal(err)
	}

	ev := waitForEvent(t, l.Events(), 2*time.Second)
	if ev.Deleted == nil {
		t.Fatalf("expected a Deleted event, got %+v", ev)
	}
}

func TestLocalFeedbackCreationErrorIsNoOp(t *testing.T) {
	l := NewLocal(Config{Name: "test", Root: t.TempDir()})
	l.FeedbackCreationError("/some/path")
}
