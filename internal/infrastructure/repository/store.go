package repository

import (
	"context"
	"database/sql"

	domainRepo "github.com/receiptly/receiptly-api/internal/domain/repository"
	"gorm.io/gorm"
)

type gormStore struct {
	db    *gorm.DB
	repos *domainRepo.Repositories
}

// NewStore creates a Store backed by db
func NewStore(db *gorm.DB) domainRepo.Store {
	return &gormStore{db: db, repos: newRepositories(db)}
}

func newRepositories(db *gorm.DB) *domainRepo.Repositories {
	return &domainRepo.Repositories{
		Organizations:  NewOrganizationRepository(db),
		Settings:       NewSettingsRepository(db),
		ReceiptTypes:   NewReceiptTypeRepository(db),
		ItemCategories: NewItemCategoryRepository(db),
		ContactTypes:   NewContactTypeRepository(db),
		Contacts:       NewContactRepository(db),
		Receipts:       NewReceiptRepository(db),
		AuditLogs:      NewAuditLogRepository(db),
	}
}

func (s *gormStore) Repos() *domainRepo.Repositories {
	return s.repos
}

// WithTx runs fn inside one database transaction with repositories bound to it.
// Commit failures caused by concurrent writers come back as conflict errors.
func (s *gormStore) WithTx(ctx context.Context, fn func(ctx context.Context, repos *domainRepo.Repositories) error) error {
	return s.transaction(ctx, fn)
}

func (s *gormStore) WithSerializableTx(ctx context.Context, fn func(ctx context.Context, repos *domainRepo.Repositories) error) error {
	return s.transaction(ctx, fn, s.serializable()...)
}

func (s *gormStore) transaction(ctx context.Context, fn func(ctx context.Context, repos *domainRepo.Repositories) error, opts ...*sql.TxOptions) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, newRepositories(tx))
	}, opts...)
	return translateError(err)
}

// serializable returns the options for a serializable transaction. SQLite
// rejects explicit isolation levels but runs on a single connection, so its
// transactions are already serial.
func (s *gormStore) serializable() []*sql.TxOptions {
	if s.db.Dialector.Name() != "postgres" {
		return nil
	}
	return []*sql.TxOptions{{Isolation: sql.LevelSerializable}}
}
