package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/pkg/pagination"
)

// ReceiptFilter narrows a receipt listing
type ReceiptFilter struct {
	Status        *enum.ReceiptStatus
	ContactID     *uuid.UUID
	ReceiptTypeID *uuid.UUID
	From          *time.Time
	To            *time.Time
	Search        string
}

// ReceiptRepository defines the interface for receipt data operations
type ReceiptRepository interface {
	// Create inserts the receipt together with its items
	Create(ctx context.Context, receipt *entity.Receipt) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*entity.Receipt, error)
	// GetWithDetails loads items, categories and the receipt type
	GetWithDetails(ctx context.Context, orgID, id uuid.UUID) (*entity.Receipt, error)
	UpdateFields(ctx context.Context, orgID, id uuid.UUID, fields map[string]interface{}) error
	List(ctx context.Context, orgID uuid.UUID, filter ReceiptFilter, params *pagination.PaginationParams) ([]entity.Receipt, int64, error)
}

// AuditLogRepository defines the interface for the audit trail
type AuditLogRepository interface {
	Create(ctx context.Context, entry *entity.AuditLog) error
	List(ctx context.Context, orgID uuid.UUID, action string, params *pagination.PaginationParams) ([]entity.AuditLog, int64, error)
}
