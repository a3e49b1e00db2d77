// Package thumbnail derives and caches small JPEG previews for store
// records: libvips (or a plain-Go fallback) for images, a single ffmpeg
// frame extraction for video. Thumbnails are keyed by a digest of the
// record's path, size and mtime, so a changed file naturally misses cache
// without an explicit invalidation call — Invalidate exists only to evict
// a stale entry promptly rather than leaving it to rot until overwritten.
package thumbnail
