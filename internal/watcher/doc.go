// Package watcher monitors a single source root and emits a uniform stream
// of file-change events. Local uses fsnotify for OS-level notifications;
// Cloud polls and diffs directory snapshots for filesystems (network or
// cloud-mounted) that don't deliver reliable change notifications.
//
//	w := watcher.New(watcher.Config{Name: "movies", Root: "/media/movies", Recursive: true})
//	w.Start()
//	for ev := range w.Events() {
//	    switch {
//	    case ev.Created != nil:
//	        // ...
//	    }
//	}
package watcher
