package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/internal/infrastructure/database"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/pkg/pagination"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var issueTime = time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

// fixture wires every service against a throwaway sqlite database holding one
// provisioned organization owned by "user-1".
type fixture struct {
	store    repository.Store
	audit    *AuditService
	receipts *ReceiptService
	orgs     *OrganizationService
	settings *SettingsService
	catalog  *CatalogService
	contacts *ContactService

	org *entity.Organization
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.NewSQLiteDB(filepath.Join(t.TempDir(), "receiptly.db"), false, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db, zap.NewNop()))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	f := &fixture{store: infraRepo.NewStore(db)}
	f.wire(f.store)

	userCtx := infraRepo.WithUser(context.Background(), "user-1")
	f.org, err = f.orgs.CreateOrganization(userCtx, &CreateOrganizationInput{Name: "Acme Foundation", Email: "owner@acme.test"})
	require.NoError(t, err)

	f.ctx = f.as(string(enum.MemberRoleOwner))
	return f
}

// wire (re)builds the services on top of store
func (f *fixture) wire(store repository.Store) {
	log := zap.NewNop()
	f.audit = NewAuditService(store, log)
	f.receipts = NewReceiptService(store, NewContactResolver(f.audit), f.audit, log, DefaultIssuanceAttempts)
	f.receipts.now = func() time.Time { return issueTime }
	f.orgs = NewOrganizationService(store, f.audit)
	f.settings = NewSettingsService(store, f.audit)
	f.catalog = NewCatalogService(store, f.audit)
	f.contacts = NewContactService(store, f.audit)
}

// as returns a request context for user-1 in the fixture organization with role
func (f *fixture) as(role string) context.Context {
	ctx := infraRepo.WithUser(context.Background(), "user-1")
	ctx = infraRepo.WithOrganization(ctx, f.org.ID)
	return infraRepo.WithMemberRole(ctx, role)
}

func (f *fixture) receiptType(t *testing.T, name string) *entity.ReceiptType {
	t.Helper()
	rt, err := f.store.Repos().ReceiptTypes.GetByName(context.Background(), f.org.ID, name)
	require.NoError(t, err)
	require.NotNil(t, rt, name)
	return rt
}

func (f *fixture) category(t *testing.T, typeName string) *entity.ItemCategory {
	t.Helper()
	rt := f.receiptType(t, typeName)
	categories, err := f.store.Repos().ItemCategories.List(context.Background(), f.org.ID, &rt.ID)
	require.NoError(t, err)
	require.NotEmpty(t, categories)
	return &categories[0]
}

func (f *fixture) counter(t *testing.T) int64 {
	t.Helper()
	org, err := f.store.Repos().Organizations.GetByID(context.Background(), f.org.ID)
	require.NoError(t, err)
	return org.ReceiptCounter
}

func (f *fixture) enableTax(t *testing.T, pct float64) {
	t.Helper()
	_, err := f.settings.UpdateSettings(f.ctx, &UpdateSettingsInput{
		SalesTax: &entity.SalesTaxSettings{Enabled: true, Percentage: pct, Name: "Sales Tax"},
	})
	require.NoError(t, err)
}

// donation builds an issue input for the Donation type with one item per amount
func (f *fixture) donation(t *testing.T, recipient string, total float64, amounts ...float64) *IssueReceiptInput {
	t.Helper()
	rt := f.receiptType(t, "Donation")
	category := f.category(t, "Donation")

	items := make([]ReceiptItemInput, len(amounts))
	for i, amount := range amounts {
		items[i] = ReceiptItemInput{ItemCategoryID: category.ID, Name: "Gift", Amount: amount}
	}
	return &IssueReceiptInput{
		ReceiptTypeID: rt.ID,
		Items:         items,
		RecipientName: recipient,
		TotalAmount:   total,
		Date:          issueTime,
	}
}

func (f *fixture) sale(t *testing.T, total float64, amounts ...float64) *IssueReceiptInput {
	t.Helper()
	input := f.donation(t, "Walk-in Customer", total, amounts...)
	input.ReceiptTypeID = f.receiptType(t, "Sales").ID
	category := f.category(t, "Sales")
	for i := range input.Items {
		input.Items[i].ItemCategoryID = category.ID
	}
	return input
}

func firstPage() *pagination.PaginationParams {
	return &pagination.PaginationParams{Page: 1, PerPage: 20}
}
