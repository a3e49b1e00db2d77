package filelist

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCreateNonRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"))
	writeFile(t, filepath.Join(root, "sub", "b.mp4"))
	writeFile(t, filepath.Join(root, ".hidden"))

	c, err := Create(context.Background(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 top-level file, got %d", c.Len())
	}
}

func TestCreateRecursive(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"))
	writeFile(t, filepath.Join(root, "sub", "b.mp4"))
	writeFile(t, filepath.Join(root, ".hidden", "c.mp4"))

	c, err := Create(context.Background(), root, true)
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 files (hidden dir skipped), got %d", c.Len())
	}
}

func TestCompare(t *testing.T) {
	rootA := t.TempDir()
	rootB := t.TempDir()

	writeFile(t, filepath.Join(rootA, "a.mp4"))
	writeFile(t, filepath.Join(rootA, "shared.mp4"))
	writeFile(t, filepath.Join(rootB, "b.mp4"))
	writeFile(t, filepath.Join(rootB, "shared.mp4"))

	a, err := Create(context.Background(), rootA, false)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Create(context.Background(), rootB, false)
	if err != nil {
		t.Fatal(err)
	}

	onlyInA, onlyInB := a.Compare(b)
	sort.Strings(onlyInA)
	sort.Strings(onlyInB)

	if len(onlyInA) != 1 || filepath.Base(onlyInA[0]) != "a.mp4" {
		t.Errorf("onlyInA = %v, want [a.mp4]", onlyInA)
	}
	if len(onlyInB) != 1 || filepath.Base(onlyInB[0]) != "b.mp4" {
		t.Errorf("onlyInB = %v, want [b.mp4]", onlyInB)
	}
}

func TestRemove(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp4"))

	c, err := Create(context.Background(), root, false)
	if err != nil {
		t.Fatal(err)
	}
	c.Remove(filepath.Join(root, "a.mp4"))
	if c.Len() != 0 {
		t.Errorf("expected empty snapshot after Remove, got %d", c.Len())
	}

	// Removing an absent path is tolerated.
	c.Remove(filepath.Join(root, "missing.mp4"))
}

func TestCompareNilReceiver(t *testing.T) {
	var c *Comparable
	other := &Comparable{root: "/tmp", paths: map[string]struct{}{}}
	onlyInSrc, onlyInDst := c.Compare(other)
	if onlyInSrc != nil || onlyInDst != nil {
		t.Errorf("expected nil results for nil receiver")
	}
}
