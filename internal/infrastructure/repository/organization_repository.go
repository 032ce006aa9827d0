package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	domainRepo "github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"gorm.io/gorm"
)

type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new organization repository
func NewOrganizationRepository(db *gorm.DB) domainRepo.OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) Create(ctx context.Context, org *entity.Organization) error {
	return translateError(r.db.WithContext(ctx).Omit("Settings", "Members").Create(org).Error)
}

func (r *organizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	var org entity.Organization
	err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &org, err
}

func (r *organizationRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Unscoped().Model(&entity.Organization{}).
		Where("slug = ?", slug).
		Count(&count).Error
	return count > 0, err
}

// AllocateReceiptNumber bumps the counter with a single UPDATE so the row stays
// locked by the caller's transaction until it commits or rolls back.
func (r *organizationRepository) AllocateReceiptNumber(ctx context.Context, orgID uuid.UUID) (int64, error) {
	db := r.db.WithContext(ctx)

	result := db.Model(&entity.Organization{}).
		Where("id = ?", orgID).
		UpdateColumn("receipt_counter", gorm.Expr("receipt_counter + ?", 1))
	if result.Error != nil {
		return 0, translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, apperror.NewNotFoundError("Organization")
	}

	var counter int64
	err := db.Model(&entity.Organization{}).
		Select("receipt_counter").
		Where("id = ?", orgID).
		Scan(&counter).Error
	if err != nil {
		return 0, translateError(err)
	}
	return counter, nil
}

func (r *organizationRepository) AddMember(ctx context.Context, member *entity.OrganizationMembership) error {
	return translateError(r.db.WithContext(ctx).Omit("Organization").Create(member).Error)
}

func (r *organizationRepository) GetMembership(ctx context.Context, orgID uuid.UUID, userID string) (*entity.OrganizationMembership, error) {
	var member entity.OrganizationMembership
	err := r.db.WithContext(ctx).
		Where("organization_id = ? AND user_id = ?", orgID, userID).
		First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &member, err
}

func (r *organizationRepository) ListForUser(ctx context.Context, userID string) ([]entity.Organization, error) {
	var orgs []entity.Organization
	err := r.db.WithContext(ctx).
		Joins("JOIN organization_memberships ON organization_memberships.organization_id = organizations.id").
		Where("organization_memberships.user_id = ?", userID).
		Order("organizations.name ASC").
		Find(&orgs).Error
	return orgs, err
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new organization settings repository
func NewSettingsRepository(db *gorm.DB) domainRepo.SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Create(ctx context.Context, settings *entity.OrganizationSettings) error {
	return translateError(r.db.WithContext(ctx).Create(settings).Error)
}

func (r *settingsRepository) GetByOrganization(ctx context.Context, orgID uuid.UUID) (*entity.OrganizationSettings, error) {
	var settings entity.OrganizationSettings
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &settings, err
}

func (r *settingsRepository) Update(ctx context.Context, settings *entity.OrganizationSettings) error {
	return translateError(r.db.WithContext(ctx).Save(settings).Error)
}
