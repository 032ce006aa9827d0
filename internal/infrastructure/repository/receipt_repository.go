package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	domainRepo "github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/pagination"
	"gorm.io/gorm"
)

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) domainRepo.ReceiptRepository {
	return &receiptRepository{db: db}
}

// Create inserts the receipt and, through the Items association, its line items
func (r *receiptRepository) Create(ctx context.Context, receipt *entity.Receipt) error {
	return translateError(r.db.WithContext(ctx).Omit("ReceiptType", "Contact").Create(receipt).Error)
}

func (r *receiptRepository) GetByID(ctx context.Context, orgID, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) GetWithDetails(ctx context.Context, orgID, id uuid.UUID) (*entity.Receipt, error) {
	var receipt entity.Receipt
	err := r.db.WithContext(ctx).
		Scopes(OrganizationScope(orgID)).
		Preload("ReceiptType").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Items.ItemCategory").
		First(&receipt, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &receipt, err
}

func (r *receiptRepository) UpdateFields(ctx context.Context, orgID, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&entity.Receipt{}).
		Scopes(OrganizationScope(orgID)).
		Where("id = ?", id).
		Updates(fields)
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NewNotFoundError("Receipt")
	}
	return nil
}

func (r *receiptRepository) List(ctx context.Context, orgID uuid.UUID, filter domainRepo.ReceiptFilter, params *pagination.PaginationParams) ([]entity.Receipt, int64, error) {
	var receipts []entity.Receipt
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Receipt{}).Scopes(OrganizationScope(orgID))

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ContactID != nil {
		query = query.Where("contact_id = ?", *filter.ContactID)
	}
	if filter.ReceiptTypeID != nil {
		query = query.Where("receipt_type_id = ?", *filter.ReceiptTypeID)
	}
	if filter.From != nil {
		query = query.Where("date >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date <= ?", *filter.To)
	}
	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(recipient_name) LIKE ? OR LOWER(receipt_number) LIKE ?", like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Preload("ReceiptType").
		Order("created_at DESC").
		Find(&receipts).Error

	return receipts, total, err
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *gorm.DB) domainRepo.AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Create writes the entry in a nested transaction. Inside an open transaction
// that is a savepoint, so a failed insert rolls back only the audit row.
func (r *auditLogRepository) Create(ctx context.Context, entry *entity.AuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(entry).Error
	})
}

func (r *auditLogRepository) List(ctx context.Context, orgID uuid.UUID, action string, params *pagination.PaginationParams) ([]entity.AuditLog, int64, error) {
	var logs []entity.AuditLog
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.AuditLog{}).Scopes(OrganizationScope(orgID))
	if action != "" {
		query = query.Where("action = ?", action)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Validate()
	err := query.Offset(params.Offset()).Limit(params.PerPage).
		Order("timestamp DESC").
		Find(&logs).Error

	return logs, total, err
}
