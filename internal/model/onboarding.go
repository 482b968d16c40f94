package model

import "time"

// SocialMediaLogin stores per-platform credentials handed over by a creator
// so staff can post on their behalf.
type SocialMediaLogin struct {
	ID        string `gorm:"primaryKey" json:"id"`
	CreatorID string `gorm:"index;not null" json:"creator_id"`
	Platform  string `gorm:"not null" json:"platform"`
	Username  string `json:"username"`
	Secret    string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// Onboarding submission statuses
const (
	SubmissionOpen     = "open"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// OnboardingSubmission is a prospective creator's intake form. Approval
// turns it into a Creator row.
type OnboardingSubmission struct {
	ID      string    `gorm:"primaryKey" json:"id"`
	Email   string    `gorm:"index" json:"email"`
	Name    string    `json:"name"`
	Answers StringMap `json:"answers"`
	Status  string    `gorm:"default:open" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
