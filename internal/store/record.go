package store

import (
	"time"

	"mediasync/internal/media"
)

// Record is the persistent counterpart of a media.File: everything a
// source observes on disk, plus the user-authored fields a conflicting
// upsert must never overwrite. MediaType, MimeType and HasDuration are
// promoted from the embedded media.File.
type Record struct {
	media.File

	ID          int64
	Label       string
	Description string
	Mark        int
	Rating      int
	Flag        int
	Option      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
