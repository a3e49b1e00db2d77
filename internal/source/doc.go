// Package source implements the per-root synchronization orchestrator: it
// runs a root's initial scan, lazily imports from an optional raw-data
// staging root, and keeps an in-memory file map current as its watchers
// report changes.
//
// A Source owns exactly one primary Watcher and, optionally, one raw-data
// Watcher. Every event the watchers emit is handled on a single goroutine
// fed by a buffered channel, so stat/copy/probe/transcode calls inside a
// handler are ordinary blocking Go calls, never lock holds.
package source
