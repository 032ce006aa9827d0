package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	domainRepo "github.com/receiptly/receiptly-api/internal/domain/repository"
	"gorm.io/gorm"
)

type receiptTypeRepository struct {
	db *gorm.DB
}

// NewReceiptTypeRepository creates a new receipt type repository
func NewReceiptTypeRepository(db *gorm.DB) domainRepo.ReceiptTypeRepository {
	return &receiptTypeRepository{db: db}
}

func (r *receiptTypeRepository) Create(ctx context.Context, receiptType *entity.ReceiptType) error {
	return translateError(r.db.WithContext(ctx).Omit("Categories").Create(receiptType).Error)
}

func (r *receiptTypeRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*entity.ReceiptType, error) {
	var receiptType entity.ReceiptType
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		First(&receiptType, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receiptType, err
}

func (r *receiptTypeRepository) GetByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.ReceiptType, error) {
	var receiptType entity.ReceiptType
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		First(&receiptType, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receiptType, err
}

func (r *receiptTypeRepository) List(ctx context.Context, orgID uuid.UUID) ([]entity.ReceiptType, error) {
	var types []entity.ReceiptType
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Order("name ASC")
		}).
		Order("name ASC").
		Find(&types).Error
	return types, err
}

type itemCategoryRepository struct {
	db *gorm.DB
}

// NewItemCategoryRepository creates a new item category repository
func NewItemCategoryRepository(db *gorm.DB) domainRepo.ItemCategoryRepository {
	return &itemCategoryRepository{db: db}
}

func (r *itemCategoryRepository) Create(ctx context.Context, category *entity.ItemCategory) error {
	return translateError(r.db.WithContext(ctx).Create(category).Error)
}

func (r *itemCategoryRepository) GetByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]entity.ItemCategory, error) {
	var categories []entity.ItemCategory
	if len(ids) == 0 {
		return categories, nil
	}
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Where("id IN ?", ids).
		Find(&categories).Error
	return categories, err
}

func (r *itemCategoryRepository) List(ctx context.Context, orgID uuid.UUID, receiptTypeID *uuid.UUID) ([]entity.ItemCategory, error) {
	var categories []entity.ItemCategory
	query := r.db.WithContext(ctx).Scopes(OrganizationScope(orgID))
	if receiptTypeID != nil {
		query = query.Where("receipt_type_id = ?", *receiptTypeID)
	}
	err := query.Order("name ASC").Find(&categories).Error
	return categories, err
}

type contactTypeRepository struct {
	db *gorm.DB
}

// NewContactTypeRepository creates a new contact type repository
func NewContactTypeRepository(db *gorm.DB) domainRepo.ContactTypeRepository {
	return &contactTypeRepository{db: db}
}

func (r *contactTypeRepository) Create(ctx context.Context, contactType *entity.ContactType) error {
	return translateError(r.db.WithContext(ctx).Create(contactType).Error)
}

func (r *contactTypeRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*entity.ContactType, error) {
	var contactType entity.ContactType
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		First(&contactType, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &contactType, err
}

func (r *contactTypeRepository) GetByName(ctx context.Context, orgID uuid.UUID, name string) (*entity.ContactType, error) {
	var contactType entity.ContactType
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		First(&contactType, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &contactType, err
}

func (r *contactTypeRepository) List(ctx context.Context, orgID uuid.UUID) ([]entity.ContactType, error) {
	var types []entity.ContactType
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Order("name ASC").
		Find(&types).Error
	return types, err
}
