package model

import "time"

// Folder is a virtual grouping of media files inside a category. Its ID is a
// slug derived from the name plus a random suffix, so renames don't move
// anything.
type Folder struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`

	// Folders created outside the category picker may be uncategorized
	CategoryID *string `gorm:"index" json:"category_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"not null" json:"name"`

	Folders []Folder `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"folders,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
