package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/pkg/money"
	"gorm.io/gorm"
)

// Contact is a receipt recipient. TotalContributions is the running sum of
// totals over non-voided receipts attributed to it, maintained incrementally.
type Contact struct {
	ID                 uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_contacts_org_email;index:idx_contacts_org_name" json:"organization_id"`
	ContactTypeID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"contact_type_id"`
	Name               string         `gorm:"size:255;not null;index:idx_contacts_org_name" json:"name"`
	Email              string         `gorm:"size:255;index:idx_contacts_org_email" json:"email,omitempty"`
	Phone              string         `gorm:"size:50" json:"phone,omitempty"`
	Address            string         `gorm:"type:text" json:"address,omitempty"`
	Notes              string         `gorm:"type:text" json:"notes,omitempty"`
	TotalContributions int64          `gorm:"not null;default:0" json:"-"` // Stored in cents
	LastReceiptDate    *time.Time     `json:"last_receipt_date,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`

	ContactType *ContactType `gorm:"foreignKey:ContactTypeID" json:"contact_type,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (c Contact) MarshalJSON() ([]byte, error) {
	type Alias Contact
	return json.Marshal(&struct {
		Alias
		TotalContributions float64 `json:"total_contributions"`
	}{
		Alias:              Alias(c),
		TotalContributions: money.FromCents(c.TotalContributions),
	})
}

// BeforeCreate generates a UUID before creating a new contact
func (c *Contact) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Contact model
func (Contact) TableName() string {
	return "contacts"
}
