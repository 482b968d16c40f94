package model

import "time"

// Creator types
const (
	CreatorTypeReal = "Real"
	CreatorTypeAI   = "AI"
)

type Creator struct {
	ID          string `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"not null" json:"name"`
	Gender      string `json:"gender,omitempty"`
	Team        string `json:"team,omitempty"`
	CreatorType string `gorm:"default:Real" json:"creator_type"`

	// Per-platform handle/URL map, e.g. {"instagram": "@name"}
	SocialLinks StringMap `json:"social_links"`

	NeedsReview       bool        `gorm:"default:false" json:"needs_review"`
	MarketingStrategy StringSlice `json:"marketing_strategy"`

	// Set when the creator manages their own account
	ProfileID *string `gorm:"index" json:"profile_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
