package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
)

// ReceiptTypeRepository defines the interface for receipt type data operations
type ReceiptTypeRepository interface {
	Create(ctx context.Context, receiptType *entity.ReceiptType) error
	// GetByID returns nil when the type does not exist in orgID
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*entity.ReceiptType, error)
	GetByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.ReceiptType, error)
	List(ctx context.Context, orgID uuid.UUID) ([]entity.ReceiptType, error)
}

// ItemCategoryRepository defines the interface for item category data operations
type ItemCategoryRepository interface {
	Create(ctx context.Context, category *entity.ItemCategory) error
	// GetByIDs returns the categories of orgID among ids; missing ones are simply absent
	GetByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]entity.ItemCategory, error)
	List(ctx context.Context, orgID uuid.UUID, receiptTypeID *uuid.UUID) ([]entity.ItemCategory, error)
}

// ContactTypeRepository defines the interface for contact type data operations
type ContactTypeRepository interface {
	Create(ctx context.Context, contactType *entity.ContactType) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*entity.ContactType, error)
	GetByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.ContactType, error)
	List(ctx context.Context, orgID uuid.UUID) ([]entity.ContactType, error)
}
