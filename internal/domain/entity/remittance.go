package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Remittance is a bank-transfer export over a set of payable receipts.
// Creating one is atomic with the status transition of every included
// receipt; a receipt can never appear in two remittances.
type Remittance struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	Code        string          `gorm:"size:50;unique;not null" json:"code"` // DIST-<year>-<seq>
	Year        int             `gorm:"not null;index" json:"year"`
	LineCount   int             `gorm:"default:0" json:"line_count"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_amount"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	// Relationships
	Lines []RemittanceLine `gorm:"foreignKey:RemittanceID" json:"lines,omitempty"`
}

// BeforeCreate generates a UUID before creating a new remittance
func (r *Remittance) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Remittance model
func (Remittance) TableName() string {
	return "remittances"
}

// RemittanceLine is one wire instruction of a remittance, denormalized from
// the receipt and performer at export time.
type RemittanceLine struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	RemittanceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"remittance_id"`
	ReceiptID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"receipt_id"`
	PerformerName string          `gorm:"size:255;not null" json:"performer_name"`
	IBAN          string          `gorm:"size:34;not null" json:"iban"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description   string          `gorm:"size:255" json:"description"`
	CreatedAt     time.Time       `json:"created_at"`

	// Relationships
	Remittance Remittance `gorm:"foreignKey:RemittanceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new remittance line
func (l *RemittanceLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RemittanceLine model
func (RemittanceLine) TableName() string {
	return "remittance_lines"
}
