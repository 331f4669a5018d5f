package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client represents an agency client (venue operator, organizer, private)
// that commissions bookings. The payment engine reads it only for the
// receivables-risk rule.
type Client struct {
	ID              uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name            string         `gorm:"size:255;not null" json:"name"`
	VATNumber       *string        `gorm:"size:50" json:"vat_number,omitempty"`
	Email           *string        `gorm:"size:255" json:"email,omitempty"`
	Address         *string        `gorm:"type:text" json:"address,omitempty"`
	ReceivablesRisk bool           `gorm:"default:false" json:"receivables_risk"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new client
func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Client model
func (Client) TableName() string {
	return "clients"
}
