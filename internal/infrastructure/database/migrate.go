package database

import (
	"fmt"

	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	err := db.AutoMigrate(
		// Tenancy
		&entity.Organization{},
		&entity.OrganizationMembership{},
		&entity.OrganizationSettings{},

		// Catalog
		&entity.ReceiptType{},
		&entity.ItemCategory{},
		&entity.ContactType{},

		// Receipts
		&entity.Contact{},
		&entity.Receipt{},
		&entity.ReceiptItem{},

		// System entities
		&entity.AuditLog{},
		&entity.IdempotencyKey{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Info("database migrations completed")
	return nil
}
