package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/enum"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReceiptLine is one booking of the frozen snapshot embedded in a receipt.
// The snapshot is taken at generation time; later changes to the source
// bookings never alter an issued receipt.
type ReceiptLine struct {
	BookingID   uuid.UUID       `json:"booking_id"`
	Venue       string          `json:"venue"`
	Date        time.Time       `json:"date"`
	Gross       decimal.Decimal `json:"gross"`
	Net         decimal.Decimal `json:"net"`
	Withholding decimal.Decimal `json:"withholding"`
}

// ReceiptLines is the typed snapshot column, stored as JSONB.
type ReceiptLines []ReceiptLine

func (l ReceiptLines) Value() (driver.Value, error) {
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *ReceiptLines) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	}
	return errors.New("unsupported type for ReceiptLines")
}

// Receipt is the payable occasional-performance receipt issued to a
// performer for one batch. Created by the batch orchestrator in GENERATA
// status; mutated only by the signature workflow and the remittance
// generator. Never deleted.
type Receipt struct {
	ID             uuid.UUID    `gorm:"type:uuid;primary_key" json:"id"`
	BatchID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"batch_id"`
	PerformerID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"performer_id"`
	Year           int          `gorm:"not null" json:"year"`
	SequenceNumber int          `gorm:"not null" json:"sequence_number"`
	Code           string       `gorm:"size:50;unique;not null" json:"code"` // PO-<year>-<tax6>-<seq>
	Lines          ReceiptLines `gorm:"type:jsonb" json:"lines"`
	Description    string       `gorm:"type:text" json:"description"`

	// Amounts at generation time, kept for audit.
	GrossOriginal       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_original"`
	NetOriginal         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_original"`
	WithholdingOriginal decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"withholding_original"`

	// Amounts recomputed at signature time from the performer's choices.
	GrossAdjusted       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"gross_adjusted"`
	NetAdjusted         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"net_adjusted"`
	WithholdingAdjusted decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"withholding_adjusted"`
	Reimbursement       decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"reimbursement"`
	AdvanceFee          decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"advance_fee"`
	TotalPayable        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_payable"`

	Status   enum.ReceiptStatus `gorm:"default:0;index" json:"status"`
	IssuedAt time.Time          `gorm:"not null" json:"issued_at"`

	// Signature token lifecycle.
	SignatureToken string    `gorm:"size:128;uniqueIndex;not null" json:"-"`
	TokenExpiresAt time.Time `gorm:"not null" json:"token_expires_at"`

	// Signature payload, filled when the performer signs.
	SignerFirstName    *string            `gorm:"size:255" json:"signer_first_name,omitempty"`
	SignerLastName     *string            `gorm:"size:255" json:"signer_last_name,omitempty"`
	PerformerReceiptNo *string            `gorm:"size:50" json:"performer_receipt_no,omitempty"`
	PaymentTiming      enum.PaymentTiming `gorm:"default:0" json:"payment_timing"`
	SignedAt           *time.Time         `json:"signed_at,omitempty"`
	AttachmentPath     *string            `gorm:"size:512" json:"attachment_path,omitempty"`

	DocumentPath *string    `gorm:"size:512" json:"document_path,omitempty"`
	PaymentDate  *time.Time `json:"payment_date,omitempty"`
	RemittanceID *uuid.UUID `gorm:"type:uuid;index" json:"remittance_id,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Performer Performer    `gorm:"foreignKey:PerformerID" json:"performer,omitempty"`
	Batch     PaymentBatch `gorm:"foreignKey:BatchID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new receipt
func (r *Receipt) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Receipt model
func (Receipt) TableName() string {
	return "receipts"
}

// TokenExpired reports whether the signature token has passed its expiry.
func (r *Receipt) TokenExpired(now time.Time) bool {
	return now.After(r.TokenExpiresAt)
}
