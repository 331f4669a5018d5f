package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Period markers stored on a payment batch.
const (
	PeriodManual     = 0 // forced run over an open-ended lookback window
	PeriodFirstHalf  = 1 // day 1-15 of the month
	PeriodSecondHalf = 2 // day 16-end of the month
)

// PaymentBatch is one generation run of the occasional-performer payment
// engine. Immutable once created, except for the aggregate counters updated
// after receipt generation completes.
type PaymentBatch struct {
	ID           uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Code         string           `gorm:"size:50;unique;not null" json:"code"` // BP-<year>-<seq>
	Year         int              `gorm:"not null;index" json:"year"`
	Month        int              `gorm:"not null" json:"month"`
	Period       int              `gorm:"not null" json:"period"`
	WindowStart  time.Time        `gorm:"type:date;not null" json:"window_start"`
	WindowEnd    time.Time        `gorm:"type:date;not null" json:"window_end"`
	GeneratedAt  time.Time        `gorm:"not null" json:"generated_at"`
	Status       enum.BatchStatus `gorm:"default:0" json:"status"`
	ReceiptCount int              `gorm:"default:0" json:"receipt_count"`
	TotalAmount  decimal.Decimal  `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`

	// Relationships
	Receipts []Receipt `gorm:"foreignKey:BatchID" json:"receipts,omitempty"`
}

// BeforeCreate generates a UUID before creating a new payment batch
func (b *PaymentBatch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PaymentBatch model
func (PaymentBatch) TableName() string {
	return "payment_batches"
}
