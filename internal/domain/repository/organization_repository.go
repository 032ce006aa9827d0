package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
)

// OrganizationRepository defines the interface for organization data operations
type OrganizationRepository interface {
	Create(ctx context.Context, org *entity.Organization) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Organization, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	// AllocateReceiptNumber increments the organization's receipt counter by one
	// and returns the new value. It must run inside the issuance transaction.
	AllocateReceiptNumber(ctx context.Context, orgID uuid.UUID) (int64, error)
	AddMember(ctx context.Context, member *entity.OrganizationMembership) error
	GetMembership(ctx context.Context, orgID uuid.UUID, userID string) (*entity.OrganizationMembership, error)
	ListForUser(ctx context.Context, userID string) ([]entity.Organization, error)
}

// SettingsRepository defines the interface for organization settings
type SettingsRepository interface {
	Create(ctx context.Context, settings *entity.OrganizationSettings) error
	GetByOrganization(ctx context.Context, orgID uuid.UUID) (*entity.OrganizationSettings, error)
	Update(ctx context.Context, settings *entity.OrganizationSettings) error
}
