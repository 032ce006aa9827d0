package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/pkg/money"
	"gorm.io/gorm"
)

// Receipt is an issued, itemized record. ReceiptNumber is unique per organization.
// Subtotal and tax fields are only populated for tax-applicable receipt types.
type Receipt struct {
	ID               uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID   uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex:idx_receipts_org_number" json:"organization_id"`
	ReceiptNumber    string             `gorm:"size:100;not null;uniqueIndex:idx_receipts_org_number" json:"receipt_number"`
	ReceiptTypeID    uuid.UUID          `gorm:"type:uuid;not null;index" json:"receipt_type_id"`
	ContactID        *uuid.UUID         `gorm:"type:uuid;index" json:"contact_id,omitempty"`
	RecipientName    string             `gorm:"size:255;not null" json:"recipient_name"`
	RecipientEmail   string             `gorm:"size:255" json:"recipient_email,omitempty"`
	RecipientPhone   string             `gorm:"size:50" json:"recipient_phone,omitempty"`
	RecipientAddress string             `gorm:"type:text" json:"recipient_address,omitempty"`
	TotalAmount      int64              `gorm:"not null" json:"-"` // Stored in cents
	SubtotalAmount   *int64             `json:"-"`                 // Stored in cents
	TaxAmount        *int64             `json:"-"`                 // Stored in cents
	TaxPercentage    *float64           `json:"tax_percentage,omitempty"`
	TaxName          *string            `gorm:"size:100" json:"tax_name,omitempty"`
	TaxDisabled      bool               `gorm:"not null" json:"tax_disabled"`
	Currency         string             `gorm:"size:10;not null" json:"currency"`
	CurrencySymbol   string             `gorm:"size:10" json:"currency_symbol,omitempty"`
	Date             time.Time          `gorm:"not null;index" json:"date"`
	Status           enum.ReceiptStatus `gorm:"not null;default:0" json:"status"`
	Notes            string             `gorm:"type:text" json:"notes,omitempty"`
	IssuedBy         string             `gorm:"size:255;not null" json:"issued_by"`
	SentAt           *time.Time         `json:"sent_at,omitempty"`
	ViewedAt         *time.Time         `json:"viewed_at,omitempty"`
	VoidedAt         *time.Time         `json:"voided_at,omitempty"`
	VoidReason       string             `gorm:"type:text" json:"void_reason,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`

	// Relationships
	ReceiptType *ReceiptType  `gorm:"foreignKey:ReceiptTypeID" json:"receipt_type,omitempty"`
	Contact     *Contact      `gorm:"foreignKey:ContactID" json:"-"`
	Items       []ReceiptItem `gorm:"foreignKey:ReceiptID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (r Receipt) MarshalJSON() ([]byte, error) {
	type Alias Receipt
	return json.Marshal(&struct {
		Alias
		TotalAmount    float64  `json:"total_amount"`
		SubtotalAmount *float64 `json:"subtotal_amount,omitempty"`
		TaxAmount      *float64 `json:"tax_amount,omitempty"`
	}{
		Alias:          Alias(r),
		TotalAmount:    money.FromCents(r.TotalAmount),
		SubtotalAmount: optionalDecimal(r.SubtotalAmount),
		TaxAmount:      optionalDecimal(r.TaxAmount),
	})
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

// IsVoided reports whether the receipt has been voided
func (r *Receipt) IsVoided() bool {
	return r.Status == enum.ReceiptStatusVoided
}

// ReceiptItem is a single line on a receipt
type ReceiptItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	ReceiptID      uuid.UUID `gorm:"type:uuid;not null;index" json:"receipt_id"`
	ItemCategoryID uuid.UUID `gorm:"type:uuid;not null;index" json:"item_category_id"`
	Name           string    `gorm:"size:255" json:"name,omitempty"`
	Quantity       *float64  `json:"quantity,omitempty"`
	UnitPrice      *int64    `json:"-"`                 // Stored in cents
	Amount         int64     `gorm:"not null" json:"-"` // Stored in cents
	Position       int       `gorm:"not null;default:0" json:"position"`
	CreatedAt      time.Time `json:"created_at"`

	ItemCategory *ItemCategory `gorm:"foreignKey:ItemCategoryID" json:"item_category,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (i ReceiptItem) MarshalJSON() ([]byte, error) {
	type Alias ReceiptItem
	return json.Marshal(&struct {
		Alias
		UnitPrice *float64 `json:"unit_price,omitempty"`
		Amount    float64  `json:"amount"`
	}{
		Alias:     Alias(i),
		UnitPrice: optionalDecimal(i.UnitPrice),
		Amount:    money.FromCents(i.Amount),
	})
}

// BeforeCreate generates a UUID before creating a new receipt item
func (i *ReceiptItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptItem model
func (ReceiptItem) TableName() string {
	return "receipt_items"
}

func optionalDecimal(cents *int64) *float64 {
	if cents == nil {
		return nil
	}
	v := money.FromCents(*cents)
	return &v
}
