// Package httpapi exposes the BooServer protocol verbs over a
// github.com/gorilla/mux router, guarded by github.com/rs/cors and
// instrumented with internal/middleware: liveness and capability probes,
// a filtered listing of everything internal/manager tracks, byte-range
// serving of video/audio items, whole-file serving of photos (original or
// thumbnail), and an in-memory "now playing" pointer.
package httpapi
