package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	domainRepo "github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/pagination"
	"gorm.io/gorm"
)

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates a new contact repository
func NewContactRepository(db *gorm.DB) domainRepo.ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, contact *entity.Contact) error {
	return translateError(r.db.WithContext(ctx).Omit("ContactType").Create(contact).Error)
}

func (r *contactRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*entity.Contact, error) {
	var contact entity.Contact
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Preload("ContactType").
		First(&contact, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &contact, err
}

func (r *contactRepository) GetByEmail(ctx context.Context, orgID uuid.UUID, email string) (*entity.Contact, error) {
	var contact entity.Contact
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		Order("created_at ASC").
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &contact, err
}

func (r *contactRepository) GetByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.Contact, error) {
	var contact entity.Contact
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("name = ?", name).
		Order("created_at ASC").
		First(&contact).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &contact, err
}

func (r *contactRepository) UpdateFields(ctx context.Context, orgID, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&entity.Contact{}).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Contact")
	}
	return nil
}

func (r *contactRepository) AddContribution(ctx context.Context, orgID, id uuid.UUID, deltaCents int64, date *time.Time) error {
	updates := map[string]interface{}{
		"total_contributions": gorm.Expr("total_contributions + ?", deltaCents),
		"updated_at":          time.Now(),
	}
	if date != nil {
		updates["last_receipt_date"] = *date
	}

	result := r.db.WithContext(ctx).Model(&entity.Contact{}).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		UpdateColumns(updates)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Contact")
	}
	return nil
}

func (r *contactRepository) List(ctx context.Context, orgID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Contact, int64, error) {
	var contacts []entity.Contact
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Contact{}).Scopes(OrganizationScope(orgID))

	if search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("ContactType").
		Order("name ASC").
		Find(&contacts).Error

	return contacts, total, err
}
