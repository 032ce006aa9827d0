package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/pkg/pagination"
)

// ContactRepository defines the interface for contact data operations
type ContactRepository interface {
	Create(ctx context.Context, contact *entity.Contact) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*entity.Contact, error)
	GetByEmail(ctx context.Context, orgID uuid.UUID, email string) (*entity.Contact, error)
	GetByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.Contact, error)
	// UpdateFields patches the given columns only
	UpdateFields(ctx context.Context, orgID, id uuid.UUID, fields map[string]interface{}) error
	// AddContribution adjusts the running total by deltaCents; a non-nil date
	// also becomes the contact's last receipt date.
	AddContribution(ctx context.Context, orgID, id uuid.UUID, deltaCents int64, date *time.Time) error
	List(ctx context.Context, orgID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Contact, int64, error)
}
