package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Booking represents a dated engagement (agibilita) at a venue, with one
// compensation line per performer. The payment engine reads bookings only;
// their lifecycle is managed elsewhere in the back office.
type Booking struct {
	ID               uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	ClientID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"client_id"`
	Date             time.Time             `gorm:"type:date;not null;index" json:"date"`
	Venue            string                `gorm:"size:255;not null" json:"venue"`
	City             *string               `gorm:"size:100" json:"city,omitempty"`
	Status           enum.BookingStatus    `gorm:"default:0;index" json:"status"`
	CollectionStatus enum.CollectionStatus `gorm:"default:0" json:"collection_status"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
	DeletedAt        gorm.DeletedAt        `gorm:"index" json:"-"`

	// Relationships
	Client Client             `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Lines  []CompensationLine `gorm:"foreignKey:BookingID" json:"lines,omitempty"`
}

// BeforeCreate generates a UUID before creating a new booking
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Booking model
func (Booking) TableName() string {
	return "bookings"
}

// PayableAhead reports whether performers may be paid for this booking
// before the agency has collected from the client. Risk-flagged clients
// must be fully collected first.
func (b *Booking) PayableAhead() bool {
	if !b.Client.ReceivablesRisk {
		return true
	}
	return b.CollectionStatus == enum.CollectionStatusCollected
}

// CompensationLine is a performer's compensation for one booking.
type CompensationLine struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	BookingID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"booking_id"`
	PerformerID uuid.UUID       `gorm:"type:uuid;not null;index" json:"performer_id"`
	Gross       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross"`
	Net         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net"`
	Withholding decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"withholding"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	Booking   Booking   `gorm:"foreignKey:BookingID" json:"-"`
	Performer Performer `gorm:"foreignKey:PerformerID" json:"performer,omitempty"`
}

// BeforeCreate generates a UUID before creating a new compensation line
func (l *CompensationLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CompensationLine model
func (CompensationLine) TableName() string {
	return "compensation_lines"
}
