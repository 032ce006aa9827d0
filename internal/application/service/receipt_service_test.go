package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueReceiptDonation(t *testing.T) {
	f := newFixture(t)

	result, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 800, 500, 300))
	require.NoError(t, err)

	assert.Equal(t, "DON-2024-0001", result.ReceiptNumber)
	assert.Equal(t, int64(1), f.counter(t))

	receipt, err := f.receipts.GetReceipt(f.ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(80000), receipt.TotalAmount)
	assert.Nil(t, receipt.SubtotalAmount)
	assert.Nil(t, receipt.TaxAmount)
	assert.Equal(t, "USD", receipt.Currency)
	assert.Equal(t, enum.ReceiptStatusDraft, receipt.Status)
	assert.Equal(t, "user-1", receipt.IssuedBy)
	assert.Len(t, receipt.Items, 2)
	require.NotNil(t, receipt.ContactID)
}

func TestIssueReceiptDonationTotalIsExact(t *testing.T) {
	f := newFixture(t)

	_, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 800.01, 500, 300))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, int64(0), f.counter(t))
}

func TestIssueReceiptSalesTax(t *testing.T) {
	f := newFixture(t)
	f.enableTax(t, 8.5)

	result, err := f.receipts.IssueReceipt(f.ctx, f.sale(t, 1085.00, 1000))
	require.NoError(t, err)

	receipt, err := f.receipts.GetReceipt(f.ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(108500), receipt.TotalAmount)
	require.NotNil(t, receipt.SubtotalAmount)
	require.NotNil(t, receipt.TaxAmount)
	require.NotNil(t, receipt.TaxPercentage)
	assert.Equal(t, int64(100000), *receipt.SubtotalAmount)
	assert.Equal(t, int64(8500), *receipt.TaxAmount)
	assert.Equal(t, 8.5, *receipt.TaxPercentage)
	assert.Equal(t, "SAL-2024-0001", receipt.ReceiptNumber)

	_, err = f.receipts.IssueReceipt(f.ctx, f.sale(t, 1084.99, 1000))
	require.Error(t, err)
	assert.True(t, apperror.IsValidation(err))
	assert.Equal(t, int64(1), f.counter(t))
}

func TestIssueReceiptSalesTaxDisabledOverride(t *testing.T) {
	f := newFixture(t)
	f.enableTax(t, 8.5)

	input := f.sale(t, 1000, 1000)
	input.TaxDisabled = true

	result, err := f.receipts.IssueReceipt(f.ctx, input)
	require.NoError(t, err)

	receipt, err := f.receipts.GetReceipt(f.ctx, result.ID)
	require.NoError(t, err)
	require.NotNil(t, receipt.TaxAmount)
	assert.Equal(t, int64(0), *receipt.TaxAmount)
	assert.True(t, receipt.TaxDisabled)
	assert.Nil(t, receipt.TaxPercentage)
}

func TestIssueReceiptUsesSettingsFormatAndPrefix(t *testing.T) {
	f := newFixture(t)

	format := "{PREFIX}/{YEAR}/{MONTH}/{NUMBER}/{ORG}"
	prefix := "REC"
	_, err := f.settings.UpdateSettings(f.ctx, &UpdateSettingsInput{ReceiptNumberingFormat: &format, ReceiptPrefix: &prefix})
	require.NoError(t, err)

	result, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 10, 10))
	require.NoError(t, err)
	assert.Equal(t, "REC/2024/03/0001/ACM", result.ReceiptNumber)
}

func TestIssueReceiptValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		mutate func(in *IssueReceiptInput)
		field  string
	}{
		{"empty recipient", func(in *IssueReceiptInput) { in.RecipientName = "  " }, "recipient_name"},
		{"no items", func(in *IssueReceiptInput) { in.Items = nil }, "items"},
		{"negative amount", func(in *IssueReceiptInput) { in.Items[0].Amount = -1 }, "items[0].amount"},
		{"sub-cent amount", func(in *IssueReceiptInput) { in.Items[0].Amount = 10.005 }, "items[0].amount"},
		{"quantity times price", func(in *IssueReceiptInput) {
			qty, unit := 2.0, 4.0
			in.Items[0].Quantity, in.Items[0].UnitPrice = &qty, &unit
		}, "items[0].amount"},
		{"quantity times price one cent off", func(in *IssueReceiptInput) {
			qty, unit := 3.0, 0.19
			in.Items[0].Quantity, in.Items[0].UnitPrice = &qty, &unit
			in.Items[0].Amount = 0.56
		}, "items[0].amount"},
		{"missing date", func(in *IssueReceiptInput) { in.Date = time.Time{} }, "date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := f.donation(t, "Jane Doe", 10, 10)
			tt.mutate(input)

			_, err := f.receipts.IssueReceipt(f.ctx, input)
			require.Error(t, err)
			appErr := apperror.GetAppError(err)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)

			fields := make([]string, 0, len(appErr.Errors))
			for _, fe := range appErr.Errors {
				fields = append(fields, fe.Field)
			}
			assert.Contains(t, fields, tt.field)
		})
	}
	assert.Equal(t, int64(0), f.counter(t))
}

func TestIssueReceiptUnknownReferences(t *testing.T) {
	f := newFixture(t)

	input := f.donation(t, "Jane Doe", 10, 10)
	input.ReceiptTypeID = uuid.New()
	_, err := f.receipts.IssueReceipt(f.ctx, input)
	assert.True(t, apperror.IsNotFound(err))

	input = f.donation(t, "Jane Doe", 10, 10)
	input.Items[0].ItemCategoryID = uuid.New()
	_, err = f.receipts.IssueReceipt(f.ctx, input)
	assert.True(t, apperror.IsNotFound(err))

	input = f.donation(t, "Jane Doe", 10, 10)
	missing := uuid.New()
	input.ContactID = &missing
	_, err = f.receipts.IssueReceipt(f.ctx, input)
	assert.True(t, apperror.IsNotFound(err))

	assert.Equal(t, int64(0), f.counter(t))
}

func TestIssueReceiptRejectsOtherOrganizationsCatalog(t *testing.T) {
	f := newFixture(t)
	other, err := f.orgs.CreateOrganization(f.ctx, &CreateOrganizationInput{Name: "Other Org"})
	require.NoError(t, err)

	foreignType, err := f.store.Repos().ReceiptTypes.GetByName(context.Background(), other.ID, "Donation")
	require.NoError(t, err)

	input := f.donation(t, "Jane Doe", 10, 10)
	input.ReceiptTypeID = foreignType.ID
	_, err = f.receipts.IssueReceipt(f.ctx, input)
	assert.True(t, apperror.IsNotFound(err))
}

func TestIssueReceiptConcurrentNumbersAreGapFree(t *testing.T) {
	f := newFixture(t)
	const n = 12

	inputs := make([]*IssueReceiptInput, n)
	for i := range inputs {
		inputs[i] = f.donation(t, fmt.Sprintf("Donor %d", i), 25, 25)
	}

	var wg sync.WaitGroup
	numbers := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := f.receipts.IssueReceipt(f.ctx, inputs[i])
			errs[i] = err
			if err == nil {
				numbers[i] = result.ReceiptNumber
			}
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	sort.Strings(numbers)
	for i, number := range numbers {
		assert.Equal(t, fmt.Sprintf("DON-2024-%04d", i+1), number)
	}
	assert.Equal(t, int64(n), f.counter(t))
}

func TestIssueReceiptAccumulatesContributions(t *testing.T) {
	f := newFixture(t)

	dates := []time.Time{
		time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	}
	for i, amount := range []float64{100, 250, 50} {
		input := f.donation(t, "Jane Doe", amount, amount)
		input.RecipientEmail = "jane@example.com"
		input.Date = dates[i]
		_, err := f.receipts.IssueReceipt(f.ctx, input)
		require.NoError(t, err)
	}

	contact, err := f.store.Repos().Contacts.GetByEmail(context.Background(), f.org.ID, "jane@example.com")
	require.NoError(t, err)
	require.NotNil(t, contact)
	assert.Equal(t, int64(40000), contact.TotalContributions)
	require.NotNil(t, contact.LastReceiptDate)
	assert.True(t, dates[2].Equal(*contact.LastReceiptDate))
}

func TestIssueReceiptConcurrentFirstReceiptsShareContact(t *testing.T) {
	f := newFixture(t)
	const n = 6

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		input := f.donation(t, "Jane Doe", 20, 20)
		input.RecipientEmail = "jane@example.com"
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.receipts.IssueReceipt(f.ctx, input)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	contacts, total, err := f.store.Repos().Contacts.List(context.Background(), f.org.ID, firstPage(), "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, contacts, 1)
	assert.Equal(t, int64(n*2000), contacts[0].TotalContributions)
}

func TestIssueReceiptWithExplicitContact(t *testing.T) {
	f := newFixture(t)

	contact, err := f.contacts.CreateContact(f.ctx, &CreateContactInput{Name: "Known Donor", Email: "known@example.com"})
	require.NoError(t, err)

	input := f.donation(t, "Printed Name", 40, 40)
	input.ContactID = &contact.ID
	result, err := f.receipts.IssueReceipt(f.ctx, input)
	require.NoError(t, err)
	assert.Equal(t, contact.ID, *result.Receipt.ContactID)

	reloaded, err := f.contacts.GetContact(f.ctx, contact.ID)
	require.NoError(t, err)
	assert.Equal(t, "Known Donor", reloaded.Name)
	assert.Equal(t, int64(4000), reloaded.TotalContributions)
}

// failingReceiptStore runs the real transaction but fails the receipt insert,
// after the contact and the counter have already been written.
type failingReceiptStore struct {
	repository.Store
}

type failingReceipts struct {
	repository.ReceiptRepository
}

func (failingReceipts) Create(ctx context.Context, receipt *entity.Receipt) error {
	return errors.New("disk full")
}

func (s failingReceiptStore) WithSerializableTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	return s.Store.WithSerializableTx(ctx, func(ctx context.Context, repos *repository.Repositories) error {
		wrapped := *repos
		wrapped.Receipts = failingReceipts{repos.Receipts}
		return fn(ctx, &wrapped)
	})
}

func TestIssueReceiptFailureLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.wire(failingReceiptStore{f.store})

	input := f.donation(t, "Brand New Donor", 75, 75)
	input.RecipientEmail = "new@example.com"
	_, err := f.receipts.IssueReceipt(f.ctx, input)
	require.Error(t, err)

	assert.Equal(t, int64(0), f.counter(t))

	contact, err := f.store.Repos().Contacts.GetByEmail(context.Background(), f.org.ID, "new@example.com")
	require.NoError(t, err)
	assert.Nil(t, contact)

	receipts, total, err := f.store.Repos().Receipts.List(context.Background(), f.org.ID, repository.ReceiptFilter{}, firstPage())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, receipts)
}

// conflictingStore reports a write conflict for the first failures transactions
type conflictingStore struct {
	repository.Store
	failures int32
	calls    int32
}

func (s *conflictingStore) WithSerializableTx(ctx context.Context, fn func(ctx context.Context, repos *repository.Repositories) error) error {
	if atomic.AddInt32(&s.calls, 1) <= s.failures {
		return apperror.WrapConflict("could not serialize access", errors.New("SQLSTATE 40001"))
	}
	return s.Store.WithSerializableTx(ctx, fn)
}

func TestIssueReceiptRetriesConflicts(t *testing.T) {
	f := newFixture(t)
	store := &conflictingStore{Store: f.store, failures: 2}
	f.wire(store)

	result, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 10, 10))
	require.NoError(t, err)
	assert.Equal(t, "DON-2024-0001", result.ReceiptNumber)
	assert.Equal(t, int32(3), atomic.LoadInt32(&store.calls))
}

func TestIssueReceiptGivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(t)
	store := &conflictingStore{Store: f.store, failures: 10}
	f.wire(store)

	_, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 10, 10))
	require.Error(t, err)
	assert.True(t, apperror.IsConflict(err))
	assert.Equal(t, int32(DefaultIssuanceAttempts), atomic.LoadInt32(&store.calls))
	assert.Equal(t, int64(0), f.counter(t))
}

func TestVoidReceipt(t *testing.T) {
	f := newFixture(t)

	input := f.donation(t, "Jane Doe", 100, 100)
	input.RecipientEmail = "jane@example.com"
	first, err := f.receipts.IssueReceipt(f.ctx, input)
	require.NoError(t, err)

	input = f.donation(t, "Jane Doe", 50, 50)
	input.RecipientEmail = "jane@example.com"
	_, err = f.receipts.IssueReceipt(f.ctx, input)
	require.NoError(t, err)

	voided, err := f.receipts.VoidReceipt(f.ctx, first.ID, "duplicate entry")
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusVoided, voided.Status)
	assert.Equal(t, "duplicate entry", voided.VoidReason)
	require.NotNil(t, voided.VoidedAt)

	contact, err := f.store.Repos().Contacts.GetByEmail(context.Background(), f.org.ID, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), contact.TotalContributions)

	_, err = f.receipts.VoidReceipt(f.ctx, first.ID, "again")
	assert.True(t, apperror.IsValidation(err))

	// the voided number is retired, not reused
	next, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Someone Else", 5, 5))
	require.NoError(t, err)
	assert.Equal(t, "DON-2024-0003", next.ReceiptNumber)
}

func TestReceiptLifecycle(t *testing.T) {
	f := newFixture(t)

	result, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 10, 10))
	require.NoError(t, err)

	_, err = f.receipts.MarkViewed(f.ctx, result.ID)
	assert.True(t, apperror.IsValidation(err), "draft cannot be viewed")

	sent, err := f.receipts.MarkSent(f.ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusSent, sent.Status)
	assert.NotNil(t, sent.SentAt)

	viewed, err := f.receipts.MarkViewed(f.ctx, result.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.ReceiptStatusViewed, viewed.Status)

	_, err = f.receipts.VoidReceipt(f.ctx, result.ID, "")
	require.NoError(t, err)

	_, err = f.receipts.MarkSent(f.ctx, result.ID)
	assert.True(t, apperror.IsValidation(err))
}

func TestListReceiptsFilters(t *testing.T) {
	f := newFixture(t)

	_, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 10, 10))
	require.NoError(t, err)
	second, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "John Roe", 20, 20))
	require.NoError(t, err)
	_, err = f.receipts.VoidReceipt(f.ctx, second.ID, "")
	require.NoError(t, err)

	all, err := f.receipts.ListReceipts(f.ctx, repository.ReceiptFilter{}, firstPage())
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Pagination.Total)

	voided := enum.ReceiptStatusVoided
	onlyVoided, err := f.receipts.ListReceipts(f.ctx, repository.ReceiptFilter{Status: &voided}, firstPage())
	require.NoError(t, err)
	require.Len(t, onlyVoided.Items, 1)
	assert.Equal(t, second.ID, onlyVoided.Items[0].ID)

	search, err := f.receipts.ListReceipts(f.ctx, repository.ReceiptFilter{Search: "jane"}, firstPage())
	require.NoError(t, err)
	assert.Len(t, search.Items, 1)
}

func TestIssueReceiptWritesAudit(t *testing.T) {
	f := newFixture(t)

	_, err := f.receipts.IssueReceipt(f.ctx, f.donation(t, "Jane Doe", 10, 10))
	require.NoError(t, err)

	logs, err := f.audit.List(f.ctx, entity.AuditActionCreateReceipt, firstPage())
	require.NoError(t, err)
	require.Len(t, logs.Items, 1)
	assert.Equal(t, "user-1", logs.Items[0].UserID)
	assert.Equal(t, "DON-2024-0001", logs.Items[0].Details["receipt_number"])

	contactLogs, err := f.audit.List(f.ctx, entity.AuditActionCreateContact, firstPage())
	require.NoError(t, err)
	assert.Len(t, contactLogs.Items, 1)
}
