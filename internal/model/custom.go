package model

import "time"

// Custom order statuses
const (
	CustomPending       = "pending"
	CustomPartiallyPaid = "partially_paid"
	CustomFullyPaid     = "fully_paid"
	CustomDelivered     = "delivered"
	CustomCancelled     = "cancelled"
)

// Custom is a tracked fan commission. Description and due date are only
// editable while the order sits in partially_paid or fully_paid.
type Custom struct {
	ID          string     `gorm:"primaryKey" json:"id"`
	CreatorID   string     `gorm:"index" json:"creator_id"`
	Description string     `json:"description"`
	Status      string     `gorm:"index;default:pending" json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Downpayment float64    `json:"downpayment"`
	FullPrice   float64    `json:"full_price"`

	// Storage paths of reference material attached to the order
	Attachments StringSlice `json:"attachments"`

	SaleBy string `json:"sale_by,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Editable reports whether description/due-date changes are allowed in the
// order's current status.
func (c *Custom) Editable() bool {
	return c.Status == CustomPartiallyPaid || c.Status == CustomFullyPaid
}
