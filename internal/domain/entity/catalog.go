package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"gorm.io/gorm"
)

// ReceiptType is a tenant-defined kind of receipt. TaxApplicable decides
// whether sales tax is computed, independent of the display name.
type ReceiptType struct {
	ID             uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_receipt_types_org_name" json:"organization_id"`
	Name           string           `gorm:"size:100;not null;uniqueIndex:idx_receipt_types_org_name" json:"name"`
	Kind           enum.ReceiptKind `gorm:"size:20;not null" json:"kind"`
	TaxApplicable  bool             `gorm:"not null" json:"tax_applicable"`
	Description    string           `gorm:"type:text" json:"description,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
	DeletedAt      gorm.DeletedAt   `gorm:"index" json:"-"`

	Categories []ItemCategory `gorm:"foreignKey:ReceiptTypeID" json:"categories,omitempty"`
}

// BeforeCreate generates a UUID before creating a new receipt type
func (t *ReceiptType) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ReceiptType model
func (ReceiptType) TableName() string {
	return "receipt_types"
}

// ItemCategory labels a line item and belongs to exactly one receipt type
type ItemCategory struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	ReceiptTypeID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"receipt_type_id"`
	Name           string         `gorm:"size:100;not null" json:"name"`
	Description    string         `gorm:"type:text" json:"description,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new item category
func (c *ItemCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ItemCategory model
func (ItemCategory) TableName() string {
	return "item_categories"
}

// ContactType classifies contacts, e.g. Individual or Organization
type ContactType struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_contact_types_org_name" json:"organization_id"`
	Name           string    `gorm:"size:100;not null;uniqueIndex:idx_contact_types_org_name" json:"name"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DefaultContactTypeName is the type implicitly created contacts get.
const DefaultContactTypeName = "Individual"

// BeforeCreate generates a UUID before creating a new contact type
func (c *ContactType) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the ContactType model
func (ContactType) TableName() string {
	return "contact_types"
}
