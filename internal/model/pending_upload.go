package model

import "time"

// PendingUpload mirrors a media record whose binary hasn't fully landed yet.
// Clients list these to re-offer the original files after a reload; the
// cleanup sweeper expires rows whose transfer never finished. The row never
// holds file content, only enough to identify what was in flight.
type PendingUpload struct {
	ID        string  `gorm:"primaryKey" json:"id"`
	MediaID   string  `gorm:"index;not null" json:"media_id"`
	CreatorID string  `gorm:"index" json:"creator_id"`
	Filename  string  `json:"filename"`
	MimeType  string  `json:"mime_type"`
	SizeBytes int64   `json:"size_bytes"`
	Bucket    string  `json:"bucket"`
	FolderID  *string `json:"folder_id,omitempty"`
	Progress  float64 `json:"progress"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
