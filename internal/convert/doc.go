// Package convert wraps ffprobe/ffmpeg subprocess invocations used by a
// source's raw-data ingestion pipeline: inspecting a file's video codec and
// producing a normalized, faststart copy suitable for byte-range HTTP
// serving.
package convert
