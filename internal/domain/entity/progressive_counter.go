package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProgressiveCounter holds the last-issued receipt sequence number for one
// (performer, year) pair. Strictly monotonic; a number is never reused even
// if its receipt is later voided.
type ProgressiveCounter struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	PerformerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_counter_performer_year" json:"performer_id"`
	Year        int       `gorm:"not null;uniqueIndex:idx_counter_performer_year" json:"year"`
	LastValue   int       `gorm:"not null;default:0" json:"last_value"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new counter
func (c *ProgressiveCounter) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ProgressiveCounter model
func (ProgressiveCounter) TableName() string {
	return "progressive_counters"
}
