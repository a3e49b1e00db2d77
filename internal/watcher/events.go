// Package watcher provides two backends — Local (fsnotify-backed) and Cloud
// (poll-and-diff) — emitting a uniform FileChangeEvent stream for a single
// root directory.
package watcher

// FileChangeEvent is the sum type every Watcher backend emits. Exactly one
// of Created, Changed, Deleted, Renamed is non-nil.
type FileChangeEvent struct {
	Created *Created
	Changed *Changed
	Deleted *Deleted
	Renamed *Renamed
}

// Created describes a new file appearing under the watched root.
type Created struct {
	Name     string
	FullPath string
}

// Changed describes an existing file's contents or metadata changing.
type Changed struct {
	Name     string
	FullPath string
}

// Deleted describes a file disappearing from the watched root.
type Deleted struct {
	Name     string
	FullPath string
}

// Renamed describes a file moving from OldFullPath to FullPath.
type Renamed struct {
	Name        string
	FullPath    string
	OldName     string
	OldFullPath string
}

func createdEvent(name, fullPath string) FileChangeEvent {
	return FileChangeEvent{Created: &Created{Name: name, FullPath: fullPath}}
}

func changedEvent(name, fullPath string) FileChangeEvent {
	return FileChangeEvent{Changed: &Changed{Name: name, FullPath: fullPath}}
}

func deletedEvent(name, fullPath string) FileChangeEvent {
	return FileChangeEvent{Deleted: &Deleted{Name: name, FullPath: fullPath}}
}

func renamedEvent(name, fullPath, oldName, oldFullPath string) FileChangeEvent {
	return FileChangeEvent{Renamed: &Renamed{
		Name: name, FullPath: fullPath,
		OldName: oldName, OldFullPath: oldFullPath,
	}}
}
