// Package pathutil provides path normalization helpers shared by the
// watcher, filelist, and source packages. It exists as a dependency-free
// foundation, matching the role mediatypes plays for media classification.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize converts path separators to forward slashes, the form used for
// every path stored in media.File and exposed over HTTP, regardless of the
// host OS.
func Normalize(path string) string {
	return filepath.ToSlash(path)
}

// Join joins path elements and normalizes the result.
func Join(elem ...string) string {
	return Normalize(filepath.Join(elem...))
}

// Rel returns the root-relative, forward-slash-normalized path of target
// under root. Returns target unchanged (normalized) if it cannot be made
// relative.
func Rel(root, target string) string {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return Normalize(target)
	}
	return Normalize(rel)
}

// Dir returns the forward-slash-normalized parent directory of path.
func Dir(path string) string {
	return Normalize(filepath.Dir(path))
}

// Base returns the final element of path, same semantics as filepath.Base.
func Base(path string) string {
	return filepath.Base(path)
}

// TitleOf returns the filename without its extension, the value used to
// populate media.File.Title at event time.
func TitleOf(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Category derives a media.File Category from a root-relative directory
// path: "ROOT" if the file sits directly in the source root, otherwise the
// root-relative directory.
func Category(relDir string) string {
	relDir = Normalize(relDir)
	if relDir == "." || relDir == "" {
		return "ROOT"
	}
	return relDir
}

// EnsureParentDir creates the parent directory of path if it does not
// already exist, matching the permissions a source root is created with.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// IsSubpath reports whether target lies within root (or equals it), after
// resolving both to absolute paths. Used to guard against path traversal
// when resolving a relative path supplied to the HTTP front-end.
func IsSubpath(root, target string) bool {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	absRoot = filepath.Clean(absRoot)
	absTarget = filepath.Clean(absTarget)
	if absRoot == absTarget {
		return true
	}
	return strings.HasPrefix(absTarget, absRoot+string(filepath.Separator))
}
