package models

import "time"

// File describes one stored blob owned by a user. The content itself lives
// in object storage under StorageKey.
type File struct {
	ID     string
	UserID string

	// OriginalName is the client supplied file name, kept for display.
	OriginalName string
	// StorageKey is "{userID}/{uuid}.{ext}" and unique across the bucket.
	StorageKey string
	MimeType   string
	Size       int64

	CreatedAt time.Time
	UpdatedAt time.Time
}
