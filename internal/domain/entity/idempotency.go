package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdempotencyKey stores processed requests so a retried POST replays the first response
type IdempotencyKey struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key            string    `gorm:"size:255;not null;uniqueIndex:idx_idempotency_scope"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_idempotency_scope"`
	UserID         string    `gorm:"size:255;not null;uniqueIndex:idx_idempotency_scope"`
	Endpoint       string    `gorm:"size:255;not null"` // e.g. "POST /api/v1/receipts"
	RequestHash    string    `gorm:"size:64"`           // BLAKE2b-256 of the request body, hex
	ResponseCode   int       `gorm:"not null"`
	ResponseBody   string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	ExpiresAt      time.Time `gorm:"not null;index"`
}

// BeforeCreate generates a UUID before inserting
func (i *IdempotencyKey) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
