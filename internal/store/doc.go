// Package store persists the media files a source observes as rows in a
// sqlite3 database, keyed uniquely by path. It is the only component in
// this module that owns on-disk state beyond the source roots themselves.
//
// Writes are serialized through BeginBatch/EndBatch, which hold the store's
// mutex only long enough to create the transaction, not for its full
// lifetime.
package store
