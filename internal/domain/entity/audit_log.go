package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions written by the services
const (
	AuditActionCreateReceipt      = "create_receipt"
	AuditActionVoidReceipt        = "void_receipt"
	AuditActionSendReceipt        = "send_receipt"
	AuditActionCreateContact      = "create_contact"
	AuditActionUpdateContact      = "update_contact"
	AuditActionUpdateSettings     = "update_settings"
	AuditActionCreateOrganization = "create_organization"
	AuditActionCreateReceiptType  = "create_receipt_type"
	AuditActionCreateItemCategory = "create_item_category"
)

// AuditLog is an append-only record of a mutation inside an organization
type AuditLog struct {
	ID             uuid.UUID              `gorm:"type:uuid;primary_key" json:"id"`
	OrganizationID uuid.UUID              `gorm:"type:uuid;not null;index" json:"organization_id"`
	UserID         string                 `gorm:"size:255;not null" json:"user_id"`
	Action         string                 `gorm:"size:100;not null;index" json:"action"`
	ResourceType   string                 `gorm:"size:100;not null" json:"resource_type"`
	ResourceID     string                 `gorm:"size:255" json:"resource_id"`
	Timestamp      time.Time              `gorm:"not null;index" json:"timestamp"`
	Details        map[string]interface{} `gorm:"type:jsonb;serializer:json" json:"details,omitempty"`
}

// BeforeCreate generates a UUID and timestamp before inserting
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Timestamp.IsZero() {
		a.Timestamp = time.Now().UTC()
	}
	return nil
}

// TableName returns the table name for the AuditLog model
func (AuditLog) TableName() string {
	return "audit_logs"
}
