package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Organization is the tenant root. ReceiptCounter only ever increases.
type Organization struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Slug           string         `gorm:"size:255;unique;not null" json:"slug"`
	ReceiptCounter int64          `gorm:"not null;default:0" json:"receipt_counter"`
	IsActive       bool           `gorm:"not null" json:"is_active"`
	CreatedBy      string         `gorm:"size:255;not null" json:"created_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Settings *OrganizationSettings   `gorm:"foreignKey:OrganizationID" json:"settings,omitempty"`
	Members  []OrganizationMembership `gorm:"foreignKey:OrganizationID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new organization
func (o *Organization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Organization model
func (Organization) TableName() string {
	return "organizations"
}

// OrganizationMembership links an identity provider subject to an organization
type OrganizationMembership struct {
	OrganizationID uuid.UUID       `gorm:"type:uuid;primaryKey" json:"organization_id"`
	UserID         string          `gorm:"size:255;primaryKey" json:"user_id"`
	Email          string          `gorm:"size:255" json:"email,omitempty"`
	Role           enum.MemberRole `gorm:"size:50;not null" json:"role"`
	CreatedAt      time.Time       `json:"created_at"`

	Organization Organization `gorm:"foreignKey:OrganizationID" json:"-"`
}

// TableName returns the table name for the OrganizationMembership model
func (OrganizationMembership) TableName() string {
	return "organization_memberships"
}
