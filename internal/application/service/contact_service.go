package service

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/pagination"
)

// ContactService handles contact management outside receipt issuance
type ContactService struct {
	store repository.Store
	audit *AuditService
}

// NewContactService creates a new contact service
func NewContactService(store repository.Store, audit *AuditService) *ContactService {
	return &ContactService{store: store, audit: audit}
}

// CreateContactInput represents the create contact input
type CreateContactInput struct {
	Name          string
	Email         string
	Phone         string
	Address       string
	Notes         string
	ContactTypeID *uuid.UUID
}

// CreateContact creates a contact. Without a type it becomes an Individual.
func (s *ContactService) CreateContact(ctx context.Context, input *CreateContactInput) (*entity.Contact, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "name is required"}})
	}

	contact := &entity.Contact{
		OrganizationID: orgID,
		Name:           name,
		Email:          strings.TrimSpace(input.Email),
		Phone:          strings.TrimSpace(input.Phone),
		Address:        strings.TrimSpace(input.Address),
		Notes:          strings.TrimSpace(input.Notes),
	}

	err := s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if contact.Email != "" {
			existing, err := tx.Contacts.GetByEmail(ctx, orgID, contact.Email)
			if err != nil {
				return err
			}
			if existing != nil {
				return apperror.NewConflictError("A contact with this email already exists")
			}
		}

		contactType, err := s.contactType(ctx, tx, orgID, input.ContactTypeID)
		if err != nil {
			return err
		}
		contact.ContactTypeID = contactType.ID

		if err := tx.Contacts.Create(ctx, contact); err != nil {
			return err
		}
		contact.ContactType = contactType

		s.audit.Record(ctx, tx.AuditLogs, AuditEntry{
			OrganizationID: orgID,
			Action:         entity.AuditActionCreateContact,
			ResourceType:   "contact",
			ResourceID:     contact.ID.String(),
			Details:        map[string]interface{}{"name": contact.Name, "source": "manual"},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

func (s *ContactService) contactType(ctx context.Context, tx *repository.Repositories, orgID uuid.UUID, id *uuid.UUID) (*entity.ContactType, error) {
	if id == nil {
		contactType, err := tx.ContactTypes.GetByName(ctx, orgID, entity.DefaultContactTypeName)
		if err != nil {
			return nil, err
		}
		if contactType == nil {
			return nil, apperror.NewNotFoundError("Contact type")
		}
		return contactType, nil
	}

	contactType, err := tx.ContactTypes.GetByID(ctx, orgID, *id)
	if err != nil {
		return nil, err
	}
	if contactType == nil {
		return nil, apperror.NewNotFoundError("Contact type")
	}
	return contactType, nil
}

// GetContact retrieves a contact by ID
func (s *ContactService) GetContact(ctx context.Context, id uuid.UUID) (*entity.Contact, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	contact, err := s.store.Repos().Contacts.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if contact == nil {
		return nil, apperror.NewNotFoundError("Contact")
	}
	return contact, nil
}

// UpdateContactInput represents a partial contact update; nil fields are left unchanged.
// The running contribution total is not editable.
type UpdateContactInput struct {
	Name          *string
	Email         *string
	Phone         *string
	Address       *string
	Notes         *string
	ContactTypeID *uuid.UUID
}

// UpdateContact patches a contact
func (s *ContactService) UpdateContact(ctx context.Context, id uuid.UUID, input *UpdateContactInput) (*entity.Contact, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	fields := map[string]interface{}{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "name must not be empty"}})
		}
		fields["name"] = name
	}
	if input.Email != nil {
		fields["email"] = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		fields["phone"] = strings.TrimSpace(*input.Phone)
	}
	if input.Address != nil {
		fields["address"] = strings.TrimSpace(*input.Address)
	}
	if input.Notes != nil {
		fields["notes"] = strings.TrimSpace(*input.Notes)
	}

	var updated *entity.Contact
	err := s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		contact, err := tx.Contacts.GetByID(ctx, orgID, id)
		if err != nil {
			return err
		}
		if contact == nil {
			return apperror.NewNotFoundError("Contact")
		}

		if email, ok := fields["email"].(string); ok && email != "" && !strings.EqualFold(email, contact.Email) {
			existing, err := tx.Contacts.GetByEmail(ctx, orgID, email)
			if err != nil {
				return err
			}
			if existing != nil && existing.ID != id {
				return apperror.NewConflictError("A contact with this email already exists")
			}
		}
		if input.ContactTypeID != nil {
			if _, err := s.contactType(ctx, tx, orgID, input.ContactTypeID); err != nil {
				return err
			}
			fields["contact_type_id"] = *input.ContactTypeID
		}

		if err := tx.Contacts.UpdateFields(ctx, orgID, id, fields); err != nil {
			return err
		}

		s.audit.Record(ctx, tx.AuditLogs, AuditEntry{
			OrganizationID: orgID,
			Action:         entity.AuditActionUpdateContact,
			ResourceType:   "contact",
			ResourceID:     id.String(),
			Details:        map[string]interface{}{"fields": fieldNames(fields)},
		})

		updated, err = tx.Contacts.GetByID(ctx, orgID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ListContacts returns contacts with page-based pagination
func (s *ContactService) ListContacts(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Contact], error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	contacts, total, err := s.store.Repos().Contacts.List(ctx, orgID, params, search)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(contacts, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

func fieldNames(fields map[string]interface{}) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
