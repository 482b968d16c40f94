// Package model defines database models
package model

import "time"

// Media file statuses. A record is created as StatusUploading before any
// bytes move, and only ever ends up in StatusComplete or StatusError.
// Error is terminal; retries create a fresh record.
const (
	StatusUploading  = "uploading"
	StatusProcessing = "processing"
	StatusComplete   = "complete"
	StatusError      = "error"
)

type MediaFile struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatorID string `gorm:"index;not null" json:"creator_id"`

	// Since creators may upload files with the same name, the object lives
	// under a generated key. Uniqueness of the visible filename is only
	// enforced per (creator, folder) scope.
	Bucket    string `gorm:"index:idx_bucket_key,unique" json:"bucket"`
	BucketKey string `gorm:"index:idx_bucket_key,unique" json:"bucket_key"`

	Filename    string `gorm:"not null" json:"filename"`
	MimeType    string `json:"mime_type"`
	SizeBytes   int64  `json:"size_bytes"`
	Status      string `gorm:"index" json:"status"`
	Description string `gorm:"size:200" json:"description,omitempty"`

	// Set for video files only, and only when thumbnail generation succeeded
	ThumbKey string `json:"thumb_key,omitempty"`

	Folders []Folder `gorm:"many2many:media_folders" json:"folders"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
