package repository

import "context"

// Repositories groups the repositories bound to one database handle,
// either the pool or an open transaction.
type Repositories struct {
	Organizations  OrganizationRepository
	Settings       SettingsRepository
	ReceiptTypes   ReceiptTypeRepository
	ItemCategories ItemCategoryRepository
	ContactTypes   ContactTypeRepository
	Contacts       ContactRepository
	Receipts       ReceiptRepository
	AuditLogs      AuditLogRepository
}

// Store hands out repositories and runs units of work atomically.
type Store interface {
	Repos() *Repositories
	// WithTx runs fn in a single transaction. Returning an error rolls everything back.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
	// WithSerializableTx is WithTx at serializable isolation where the database
	// supports choosing it. Read-then-write races surface as conflict errors.
	WithSerializableTx(ctx context.Context, fn func(ctx context.Context, repos *Repositories) error) error
}
