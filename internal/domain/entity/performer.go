package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/scenart/agency-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Performer represents an artist managed by the agency, with the fiscal
// profile required to issue occasional-performance receipts. The payment
// engine never mutates performer records.
type Performer struct {
	ID           uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	FirstName    string            `gorm:"size:255;not null" json:"first_name"`
	LastName     string            `gorm:"size:255;not null" json:"last_name"`
	StageName    *string           `gorm:"size:255" json:"stage_name,omitempty"`
	TaxCode      string            `gorm:"size:32;index" json:"tax_code"`
	Address      string            `gorm:"size:255" json:"address"`
	PostalCode   string            `gorm:"size:10" json:"postal_code"`
	City         string            `gorm:"size:100" json:"city"`
	Province     string            `gorm:"size:5" json:"province"`
	IBAN         string            `gorm:"size:34" json:"iban"`
	Email        string            `gorm:"size:255" json:"email"`
	Phone        *string           `gorm:"size:50" json:"phone,omitempty"`
	ContractType enum.ContractType `gorm:"default:0" json:"contract_type"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	DeletedAt    gorm.DeletedAt    `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new performer
func (p *Performer) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Performer model
func (Performer) TableName() string {
	return "performers"
}

// FullName returns the performer's legal name
func (p *Performer) FullName() string {
	return p.FirstName + " " + p.LastName
}

// MissingProfileFields returns the names of the profile fields a batch run
// requires but that are still empty. An empty result means the performer can
// receive a receipt.
func (p *Performer) MissingProfileFields() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"tax_code", p.TaxCode},
		{"address", p.Address},
		{"postal_code", p.PostalCode},
		{"city", p.City},
		{"province", p.Province},
		{"iban", p.IBAN},
		{"email", p.Email},
	}
	for _, f := range fields {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}
