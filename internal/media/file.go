// Package media defines the in-memory representation of a tracked file, the
// value every source keeps in its files map and every store record is built
// from.
package media

import (
	"path/filepath"
	"strings"

	"mediasync/internal/mediatypes"
	"mediasync/internal/pathutil"
)

// File describes one tracked file as observed on disk. It is the shape a
// source.Source caches in memory; store.Record extends it with the
// persistent, user-authored fields.
type File struct {
	// Path is absolute and forward-slash-normalized, unique across all
	// sources.
	Path string

	// Ext is the lowercase extension including the dot.
	Ext string

	// Title is the filename without extension at event time. Renaming the
	// underlying file updates Title.
	Title string

	// Category is "ROOT" if the file lies directly in its source root,
	// otherwise the root-relative directory path.
	Category string

	// Length is the file size in bytes at last observation.
	Length int64

	// Date is the file's mtime in milliseconds since epoch.
	Date int64

	// Duration is seconds, valid only for .mp4/.mp3; 0 otherwise.
	Duration float64
}

// MediaType returns the derived mediatypes.Class for the file: "v" for mp4,
// "a" for mp3, "p" for jpg/jpeg/png, and "v" as the default for anything
// else that slipped past the accepted-extension filter.
func (f File) MediaType() mediatypes.Class {
	class := mediatypes.ClassOf(f.Ext)
	if class == mediatypes.ClassOther {
		return mediatypes.ClassVideo
	}
	return class
}

// MimeType returns the HTTP Content-Type to serve this file as.
func (f File) MimeType() string {
	return mediatypes.MimeType(f.Ext)
}

// HasDuration reports whether Duration is meaningful for this file's
// extension.
func (f File) HasDuration() bool {
	return f.Ext == ".mp4" || f.Ext == ".mp3"
}

// New builds a File from an absolute path, a root, and the stat fields a
// caller already has in hand. Category is derived from the path's
// directory relative to root.
func New(absPath, root string, size int64, mtimeMillis int64) File {
	ext := strings.ToLower(filepath.Ext(absPath))
	relDir := pathutil.Dir(pathutil.Rel(root, absPath))

	return File{
		Path:     pathutil.Normalize(absPath),
		Ext:      ext,
		Title:    pathutil.TitleOf(absPath),
		Category: pathutil.Category(relDir),
		Length:   size,
		Date:     mtimeMillis,
	}
}

// Rename updates Path and Title to reflect the file having moved to
// newAbsPath, preserving every other field (size, date, duration) since a
// rename alone does not change file content.
func (f File) Rename(newAbsPath, root string) File {
	relDir := pathutil.Dir(pathutil.Rel(root, newAbsPath))
	f.Path = pathutil.Normalize(newAbsPath)
	f.Title = pathutil.TitleOf(newAbsPath)
	f.Category = pathutil.Category(relDir)
	return f
}
