package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultReceiptNumberingFormat is used when an organization has not configured a template.
const DefaultReceiptNumberingFormat = "{PREFIX}-{YEAR}-{NUMBER}"

// OrganizationSettings holds the per-organization receipt configuration.
// Only organization owners and admins may change it.
type OrganizationSettings struct {
	ID                     uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID         uuid.UUID        `gorm:"type:uuid;uniqueIndex;not null" json:"organization_id"`
	ReceiptNumberingFormat string           `gorm:"size:255" json:"receipt_numbering_format"`
	ReceiptPrefix          *string          `gorm:"size:50" json:"receipt_prefix,omitempty"`
	Currency               CurrencySettings `gorm:"type:jsonb;serializer:json" json:"currency"`
	SalesTax               SalesTaxSettings `gorm:"type:jsonb;serializer:json" json:"sales_tax"`
	ReceiptFooter          string           `gorm:"size:500" json:"receipt_footer,omitempty"`
	UpdatedBy              string           `gorm:"size:255" json:"updated_by,omitempty"`
	CreatedAt              time.Time        `json:"created_at"`
	UpdatedAt              time.Time        `json:"updated_at"`
}

// CurrencySettings is the currency receipts are issued in.
type CurrencySettings struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
}

// SalesTaxSettings controls tax on tax-applicable receipt types.
type SalesTaxSettings struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage"`
	Name       string  `json:"name"`
}

// BeforeCreate generates a UUID before creating settings
func (s *OrganizationSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrganizationSettings model
func (OrganizationSettings) TableName() string {
	return "organization_settings"
}

// NumberingFormat returns the configured template or the default one.
func (s *OrganizationSettings) NumberingFormat() string {
	if s == nil || s.ReceiptNumberingFormat == "" {
		return DefaultReceiptNumberingFormat
	}
	return s.ReceiptNumberingFormat
}

// DefaultOrganizationSettings returns the settings a new organization starts with
func DefaultOrganizationSettings(orgID uuid.UUID) *OrganizationSettings {
	return &OrganizationSettings{
		OrganizationID:         orgID,
		ReceiptNumberingFormat: DefaultReceiptNumberingFormat,
		Currency: CurrencySettings{
			Code:   "USD",
			Symbol: "$",
		},
		SalesTax: SalesTaxSettings{
			Enabled:    false,
			Percentage: 0,
			Name:       "Sales Tax",
		},
	}
}
