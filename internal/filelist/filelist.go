// Package filelist snapshots the set of files under a root directory so two
// points in time can be diffed into created/deleted path sets, the
// mechanism the cloud watcher backend uses in place of OS-level change
// notifications.
package filelist

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"mediasync/internal/pathutil"
)

// Comparable is a snapshot of root-relative, forward-slash-normalized paths
// of regular files found under root at the time Create ran.
type Comparable struct {
	root  string
	paths map[string]struct{}
}

// Create walks root and records every regular file found, optionally
// recursing into subdirectories. Hidden entries (dotfiles) are skipped,
// matching the teacher scanner's directory-listing convention.
func Create(ctx context.Context, root string, recursive bool) (*Comparable, error) {
	c := &Comparable{
		root:  root,
		paths: make(map[string]struct{}),
	}

	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			c.paths[entry.Name()] = struct{}{}
		}
		return c, nil
	}

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			if path != root && strings.HasPrefix(filepath.Base(path), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(filepath.Base(path), ".") {
			return nil
		}
		rel := pathutil.Rel(root, path)
		c.paths[rel] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return c, nil
}

// Remove deletes absolutePath from the snapshot, tolerant of paths that are
// not present (e.g. a file already removed between scans).
func (c *Comparable) Remove(absolutePath string) {
	if c == nil {
		return
	}
	rel := pathutil.Rel(c.root, absolutePath)
	delete(c.paths, rel)
}

// Compare diffs c against other, returning absolute paths (resolved against
// each side's own root) that are exclusive to one side. onlyInSrc holds
// paths present in c but not other, resolved against c's root; onlyInDst
// holds the converse, resolved against other's root.
func (c *Comparable) Compare(other *Comparable) (onlyInSrc, onlyInDst []string) {
	if c == nil || other == nil {
		return nil, nil
	}

	for rel := range c.paths {
		if _, ok := other.paths[rel]; !ok {
			onlyInSrc = append(onlyInSrc, pathutil.Join(c.root, rel))
		}
	}
	for rel := range other.paths {
		if _, ok := c.paths[rel]; !ok {
			onlyInDst = append(onlyInDst, pathutil.Join(other.root, rel))
		}
	}

	return onlyInSrc, onlyInDst
}

// Len returns the number of paths currently in the snapshot.
func (c *Comparable) Len() int {
	if c == nil {
		return 0
	}
	return len(c.paths)
}

// Root returns the root the snapshot was built from.
func (c *Comparable) Root() string {
	if c == nil {
		return ""
	}
	return c.root
}
