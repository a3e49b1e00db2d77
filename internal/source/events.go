package source

import "mediasync/internal/media"

// EventKind identifies what happened to a tracked file.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventChanged EventKind = "changed"
	EventDeleted EventKind = "deleted"
	EventRenamed EventKind = "renamed"
)

// Event is what a Source publishes to its subscriber (manager.Manager) for
// every mutation of its in-memory file map.
//
// File carries the current state for Created, Changed and Renamed. OldPath
// carries the path that left the map, set for Deleted and Renamed.
type Event struct {
	Kind    EventKind
	File    media.File
	OldPath string
}
