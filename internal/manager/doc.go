// Package manager aggregates every configured source.Source against a
// shared store.Store: it reconciles the store with what each source finds
// on disk at startup, keeps it current from each source's event stream
// afterward, and exposes the read surface the HTTP front-end queries.
package manager
