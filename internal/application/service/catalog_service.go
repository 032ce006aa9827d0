package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
)

// CatalogService manages receipt types, item categories and contact types.
// Reads never create rows; defaults come from Provision.
type CatalogService struct {
	store repository.Store
	audit *AuditService
}

// NewCatalogService creates a new catalog service
func NewCatalogService(store repository.Store, audit *AuditService) *CatalogService {
	return &CatalogService{store: store, audit: audit}
}

// ListReceiptTypes returns the organization's receipt types with their categories
func (s *CatalogService) ListReceiptTypes(ctx context.Context) ([]entity.ReceiptType, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	return s.store.Repos().ReceiptTypes.List(ctx, orgID)
}

// CreateReceiptTypeInput represents input for a user-defined receipt type
type CreateReceiptTypeInput struct {
	Name          string
	Kind          enum.ReceiptKind
	TaxApplicable *bool
	Description   string
}

// CreateReceiptType adds a receipt type. Tax applicability defaults from the kind.
func (s *CatalogService) CreateReceiptType(ctx context.Context, input *CreateReceiptTypeInput) (*entity.ReceiptType, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "name is required"}})
	}
	kind := input.Kind
	if kind == "" {
		kind = enum.ReceiptKindCustom
	}
	if !kind.Valid() {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "kind", Message: "unknown receipt kind"}})
	}

	taxApplicable := kind.DefaultTaxApplicable()
	if input.TaxApplicable != nil {
		taxApplicable = *input.TaxApplicable
	}

	receiptType := &entity.ReceiptType{
		OrganizationID: orgID,
		Name:           name,
		Kind:           kind,
		TaxApplicable:  taxApplicable,
		Description:    strings.TrimSpace(input.Description),
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		existing, err := tx.ReceiptTypes.GetByName(ctx, orgID, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperror.NewConflictError("A receipt type with this name already exists")
		}
		if err := tx.ReceiptTypes.Create(ctx, receiptType); err != nil {
			return err
		}

		s.audit.Record(ctx, tx.AuditLogs, AuditEntry{
			OrganizationID: orgID,
			Action:         entity.AuditActionCreateReceiptType,
			ResourceType:   "receipt_type",
			ResourceID:     receiptType.ID.String(),
			Details:        map[string]interface{}{"name": name, "kind": kind.String(), "tax_applicable": taxApplicable},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receiptType, nil
}

// ListItemCategories returns categories, optionally for one receipt type
func (s *CatalogService) ListItemCategories(ctx context.Context, receiptTypeID *uuid.UUID) ([]entity.ItemCategory, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	return s.store.Repos().ItemCategories.List(ctx, orgID, receiptTypeID)
}

// CreateItemCategoryInput represents input for a new item category
type CreateItemCategoryInput struct {
	ReceiptTypeID uuid.UUID
	Name          string
	Description   string
}

// CreateItemCategory adds a category under an existing receipt type of the organization
func (s *CatalogService) CreateItemCategory(ctx context.Context, input *CreateItemCategoryInput) (*entity.ItemCategory, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "name is required"}})
	}

	category := &entity.ItemCategory{
		OrganizationID: orgID,
		ReceiptTypeID:  input.ReceiptTypeID,
		Name:           name,
		Description:    strings.TrimSpace(input.Description),
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		receiptType, err := tx.ReceiptTypes.GetByID(ctx, orgID, input.ReceiptTypeID)
		if err != nil {
			return err
		}
		if receiptType == nil {
			return apperror.NewNotFoundError("Receipt type")
		}
		if err := tx.ItemCategories.Create(ctx, category); err != nil {
			return err
		}

		s.audit.Record(ctx, tx.AuditLogs, AuditEntry{
			OrganizationID: orgID,
			Action:         entity.AuditActionCreateItemCategory,
			ResourceType:   "item_category",
			ResourceID:     category.ID.String(),
			Details:        map[string]interface{}{"name": name, "receipt_type": receiptType.Name},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

// ListContactTypes returns the organization's contact types
func (s *CatalogService) ListContactTypes(ctx context.Context) ([]entity.ContactType, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	return s.store.Repos().ContactTypes.List(ctx, orgID)
}
