package model

import "time"

// Primary roles for staff accounts
const (
	RoleAdmin    = "Admin"
	RoleManager  = "Manager"
	RoleEmployee = "Employee"
)

// Profile is a staff or creator account. AdditionalRoles carries extra role
// tags on top of the primary role; see service.AddRole for the exclusivity
// rules applied to it.
type Profile struct {
	ID              string      `gorm:"primaryKey" json:"id"`
	Email           string      `gorm:"unique;not null" json:"email"`
	Name            string      `json:"name"`
	Phone           string      `json:"phone,omitempty"`
	Telegram        string      `json:"telegram,omitempty"`
	PasswordHash    string      `gorm:"not null" json:"-"`
	PrimaryRole     string      `gorm:"not null;default:Employee" json:"primary_role"`
	AdditionalRoles StringSlice `json:"additional_roles"`
	Status          string      `gorm:"default:active" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}
