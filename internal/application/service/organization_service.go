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
	"github.com/receiptly/receiptly-api/pkg/utils"
)

// defaultReceiptTypes are provisioned for every new organization, each with one category
var defaultReceiptTypes = []struct {
	Name     string
	Kind     enum.ReceiptKind
	Category string
}{
	{"Donation", enum.ReceiptKindDonation, "General Fund"},
	{"Sales", enum.ReceiptKindSales, "Products"},
	{"Service", enum.ReceiptKindService, "Services"},
}

var defaultContactTypes = []string{entity.DefaultContactTypeName, "Organization"}

// OrganizationService handles organization lifecycle and membership
type OrganizationService struct {
	store repository.Store
	audit *AuditService
}

// NewOrganizationService creates a new organization service
func NewOrganizationService(store repository.Store, audit *AuditService) *OrganizationService {
	return &OrganizationService{store: store, audit: audit}
}

// CreateOrganizationInput represents input for creating an organization
type CreateOrganizationInput struct {
	Name           string
	Email          string
	ReceiptPrefix  string
	CurrencyCode   string
	CurrencySymbol string
}

// CreateOrganization creates the organization, its settings, the default
// catalog and the caller's owner membership in one transaction.
func (s *OrganizationService) CreateOrganization(ctx context.Context, input *CreateOrganizationInput) (*entity.Organization, error) {
	userID, ok := infraRepo.GetUserID(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "name", Message: "name is required"}})
	}

	slug, err := s.uniqueSlug(ctx, name)
	if err != nil {
		return nil, err
	}

	org := &entity.Organization{
		Name:      name,
		Slug:      slug,
		IsActive:  true,
		CreatedBy: userID,
	}

	err = s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		if err := tx.Organizations.Create(ctx, org); err != nil {
			return err
		}

		if err := tx.Organizations.AddMember(ctx, &entity.OrganizationMembership{
			OrganizationID: org.ID,
			UserID:         userID,
			Email:          input.Email,
			Role:           enum.MemberRoleOwner,
		}); err != nil {
			return err
		}

		settings := entity.DefaultOrganizationSettings(org.ID)
		if prefix := strings.TrimSpace(input.ReceiptPrefix); prefix != "" {
			settings.ReceiptPrefix = &prefix
		}
		if code := strings.TrimSpace(input.CurrencyCode); code != "" {
			settings.Currency = entity.CurrencySettings{Code: strings.ToUpper(code), Symbol: input.CurrencySymbol}
		}
		settings.UpdatedBy = userID
		if err := tx.Settings.Create(ctx, settings); err != nil {
			return err
		}
		org.Settings = settings

		if err := Provision(ctx, tx, org.ID); err != nil {
			return err
		}

		s.audit.Record(ctx, tx.AuditLogs, AuditEntry{
			OrganizationID: org.ID,
			Action:         entity.AuditActionCreateOrganization,
			ResourceType:   "organization",
			ResourceID:     org.ID.String(),
			Details:        map[string]interface{}{"name": org.Name, "slug": org.Slug},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return org, nil
}

// Provision creates the default receipt types, item categories and contact types
// for orgID. It runs once, when the organization is created.
func Provision(ctx context.Context, tx *repository.Repositories, orgID uuid.UUID) error {
	for _, def := range defaultReceiptTypes {
		receiptType := &entity.ReceiptType{
			OrganizationID: orgID,
			Name:           def.Name,
			Kind:           def.Kind,
			TaxApplicable:  def.Kind.DefaultTaxApplicable(),
		}
		if err := tx.ReceiptTypes.Create(ctx, receiptType); err != nil {
			return err
		}

		if err := tx.ItemCategories.Create(ctx, &entity.ItemCategory{
			OrganizationID: orgID,
			ReceiptTypeID:  receiptType.ID,
			Name:           def.Category,
		}); err != nil {
			return err
		}
	}

	for _, name := range defaultContactTypes {
		if err := tx.ContactTypes.Create(ctx, &entity.ContactType{OrganizationID: orgID, Name: name}); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrganizationService) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := utils.Slugify(name)
	if base == "" {
		base = "org"
	}

	slug := base
	for i := 0; i < 5; i++ {
		exists, err := s.store.Repos().Organizations.SlugExists(ctx, slug)
		if err != nil {
			return "", err
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + utils.ShortSuffix(6)
	}
	return "", apperror.NewConflictError("Could not allocate a unique organization slug")
}

// GetOrganization returns the organization with its settings
func (s *OrganizationService) GetOrganization(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	repos := s.store.Repos()

	org, err := repos.Organizations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, apperror.NewNotFoundError("Organization")
	}

	settings, err := repos.Settings.GetByOrganization(ctx, id)
	if err != nil {
		return nil, err
	}
	org.Settings = settings
	return org, nil
}

// GetCurrent returns the organization selected for this request
func (s *OrganizationService) GetCurrent(ctx context.Context) (*entity.Organization, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	return s.GetOrganization(ctx, orgID)
}

// ListMine returns the organizations the caller belongs to
func (s *OrganizationService) ListMine(ctx context.Context) ([]entity.Organization, error) {
	userID, ok := infraRepo.GetUserID(ctx)
	if !ok {
		return nil, apperror.ErrUnauthorized
	}
	return s.store.Repos().Organizations.ListForUser(ctx, userID)
}

// GetMembership returns the caller's membership in orgID, or nil when there is none
func (s *OrganizationService) GetMembership(ctx context.Context, orgID uuid.UUID, userID string) (*entity.OrganizationMembership, error) {
	return s.store.Repos().Organizations.GetMembership(ctx, orgID, userID)
}

// AddMemberInput represents input for adding a user to the active organization
type AddMemberInput struct {
	UserID string
	Email  string
	Role   enum.MemberRole
}

// AddMember adds another identity to the active organization. Owners and admins only.
func (s *OrganizationService) AddMember(ctx context.Context, input *AddMemberInput) (*entity.OrganizationMembership, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	if err := requireManager(ctx); err != nil {
		return nil, err
	}

	switch input.Role {
	case enum.MemberRoleAdmin, enum.MemberRoleMember:
	default:
		return nil, apperror.NewValidationError([]apperror.FieldError{{Field: "role", Message: "role must be admin or member"}})
	}

	existing, err := s.store.Repos().Organizations.GetMembership(ctx, orgID, input.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("User is already a member of this organization")
	}

	member := &entity.OrganizationMembership{
		OrganizationID: orgID,
		UserID:         input.UserID,
		Email:          input.Email,
		Role:           input.Role,
	}
	if err := s.store.Repos().Organizations.AddMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// requireManager rejects callers that are not owner or admin of the active organization
func requireManager(ctx context.Context) error {
	role, _ := infraRepo.GetMemberRole(ctx)
	if !enum.MemberRole(role).CanManageSettings() {
		return apperror.NewForbiddenError("Only organization owners and admins can perform this action")
	}
	return nil
}
