package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/metrics"
	"github.com/receiptly/receiptly-api/pkg/money"
	"github.com/receiptly/receiptly-api/pkg/pagination"
	"go.uber.org/zap"
)

// DefaultIssuanceAttempts bounds how often a conflicting issuance is re-run
const DefaultIssuanceAttempts = 3

// ReceiptService issues receipts and moves them through their lifecycle
type ReceiptService struct {
	store       repository.Store
	resolver    *ContactResolver
	audit       *AuditService
	log         *zap.Logger
	maxAttempts int
	now         func() time.Time
}

// NewReceiptService creates a new receipt service
func NewReceiptService(
	store repository.Store,
	resolver *ContactResolver,
	audit *AuditService,
	log *zap.Logger,
	maxAttempts int,
) *ReceiptService {
	if maxAttempts < 1 {
		maxAttempts = DefaultIssuanceAttempts
	}
	return &ReceiptService{
		store:       store,
		resolver:    resolver,
		audit:       audit,
		log:         log,
		maxAttempts: maxAttempts,
		now:         time.Now,
	}
}

// ReceiptItemInput represents a line item on a new receipt
type ReceiptItemInput struct {
	ItemCategoryID uuid.UUID
	Name           string
	Quantity       *float64
	UnitPrice      *float64
	Amount         float64
}

// IssueReceiptInput represents the issue receipt input
type IssueReceiptInput struct {
	ReceiptTypeID  uuid.UUID
	Items          []ReceiptItemInput
	RecipientName  string
	RecipientEmail string
	RecipientPhone string
	Address        string
	ContactID      *uuid.UUID
	TotalAmount    float64
	Currency       string
	Date           time.Time
	Notes          string
	TaxDisabled    bool
}

// IssueReceiptResult is returned after a receipt commits
type IssueReceiptResult struct {
	ID            uuid.UUID       `json:"id"`
	ReceiptNumber string          `json:"receipt_number"`
	Receipt       *entity.Receipt `json:"receipt"`
}

// IssueReceipt validates, numbers and persists a receipt in one transaction.
// The whole transaction is re-run when it loses a race on the counter, the
// contact row or the receipt number, up to the configured number of attempts.
func (s *ReceiptService) IssueReceipt(ctx context.Context, input *IssueReceiptInput) (*IssueReceiptResult, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	if err := validateIssueInput(input); err != nil {
		metrics.IssuanceFailures.WithLabelValues(string(apperror.KindValidation)).Inc()
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		result, err := s.issueOnce(ctx, orgID, input)
		if err == nil {
			kind := enum.ReceiptKindCustom
			if result.Receipt.ReceiptType != nil {
				kind = result.Receipt.ReceiptType.Kind
			}
			metrics.ReceiptsIssued.WithLabelValues(kind.String()).Inc()
			s.log.Info("receipt issued",
				zap.String("organization_id", orgID.String()),
				zap.String("receipt_id", result.ID.String()),
				zap.String("receipt_number", result.ReceiptNumber),
				zap.Int("attempt", attempt),
			)
			return result, nil
		}

		lastErr = err
		if !apperror.IsConflict(err) || attempt == s.maxAttempts {
			break
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			lastErr = ctxErr
			break
		}

		metrics.IssuanceRetries.Inc()
		s.log.Warn("receipt issuance conflict, retrying",
			zap.String("organization_id", orgID.String()),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	metrics.IssuanceFailures.WithLabelValues(string(apperror.GetAppError(lastErr).Kind)).Inc()
	return nil, lastErr
}

func (s *ReceiptService) issueOnce(ctx context.Context, orgID uuid.UUID, input *IssueReceiptInput) (*IssueReceiptResult, error) {
	var receipt *entity.Receipt

	// serializable so two first receipts for the same new email cannot both
	// create a contact; the loser retries and finds the winner's row
	err := s.store.WithSerializableTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		// 1. references must exist in this organization
		org, err := tx.Organizations.GetByID(ctx, orgID)
		if err != nil {
			return err
		}
		if org == nil {
			return apperror.NewNotFoundError("Organization")
		}

		receiptType, err := tx.ReceiptTypes.GetByID(ctx, orgID, input.ReceiptTypeID)
		if err != nil {
			return err
		}
		if receiptType == nil {
			return apperror.NewNotFoundError("Receipt type")
		}

		if err := s.checkCategories(ctx, tx, orgID, input.Items); err != nil {
			return err
		}

		settings, err := tx.Settings.GetByOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		if settings == nil {
			settings = entity.DefaultOrganizationSettings(orgID)
		}

		// 2. totals must reconcile before anything is written
		breakdown := ComputeTax(input.Items, receiptType, settings.SalesTax, input.TaxDisabled)
		if err := ReconcileTotal(breakdown, input.TotalAmount, receiptType.TaxApplicable); err != nil {
			return err
		}

		// 3. contact
		contactID, err := s.contactFor(ctx, tx, orgID, input)
		if err != nil {
			return err
		}

		// 4. number
		counter, err := tx.Organizations.AllocateReceiptNumber(ctx, orgID)
		if err != nil {
			return err
		}
		prefix := ResolvePrefix(settings.ReceiptPrefix, receiptType.Name)
		receiptNumber := FormatReceiptNumber(settings.NumberingFormat(), prefix, counter, s.now(), org.Name)

		// 5. receipt and items
		receipt = buildReceipt(orgID, receiptNumber, receiptType, contactID, settings, breakdown, input)
		receipt.IssuedBy, _ = infraRepo.GetUserID(ctx)
		if err := tx.Receipts.Create(ctx, receipt); err != nil {
			return err
		}
		receipt.ReceiptType = receiptType

		// 6. running total
		date := input.Date
		if err := tx.Contacts.AddContribution(ctx, orgID, contactID, breakdown.TotalCents, &date); err != nil {
			return err
		}

		// 7. audit
		s.audit.Record(ctx, tx.AuditLogs, AuditEntry{
			OrganizationID: orgID,
			Action:         entity.AuditActionCreateReceipt,
			ResourceType:   "receipt",
			ResourceID:     receipt.ID.String(),
			Details: map[string]interface{}{
				"receipt_number": receiptNumber,
				"total_amount":   money.Format(breakdown.TotalCents),
				"currency":       receipt.Currency,
				"contact_id":     contactID.String(),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &IssueReceiptResult{
		ID:            receipt.ID,
		ReceiptNumber: receipt.ReceiptNumber,
		Receipt:       receipt,
	}, nil
}

func (s *ReceiptService) checkCategories(ctx context.Context, tx *repository.Repositories, orgID uuid.UUID, items []ReceiptItemInput) error {
	seen := make(map[uuid.UUID]bool, len(items))
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if !seen[item.ItemCategoryID] {
			seen[item.ItemCategoryID] = true
			ids = append(ids, item.ItemCategoryID)
		}
	}

	categories, err := tx.ItemCategories.GetByIDs(ctx, orgID, ids)
	if err != nil {
		return err
	}
	if len(categories) != len(ids) {
		return apperror.NewNotFoundError("Item category")
	}
	return nil
}

func (s *ReceiptService) contactFor(ctx context.Context, tx *repository.Repositories, orgID uuid.UUID, input *IssueReceiptInput) (uuid.UUID, error) {
	if input.ContactID != nil {
		contact, err := tx.Contacts.GetByID(ctx, orgID, *input.ContactID)
		if err != nil {
			return uuid.Nil, err
		}
		if contact == nil {
			return uuid.Nil, apperror.NewNotFoundError("Contact")
		}
		return contact.ID, nil
	}

	return s.resolver.Resolve(ctx, tx, RecipientData{
		Name:    input.RecipientName,
		Email:   input.RecipientEmail,
		Phone:   input.RecipientPhone,
		Address: input.Address,
	}, orgID)
}

func buildReceipt(
	orgID uuid.UUID,
	receiptNumber string,
	receiptType *entity.ReceiptType,
	contactID uuid.UUID,
	settings *entity.OrganizationSettings,
	breakdown TaxBreakdown,
	input *IssueReceiptInput,
) *entity.Receipt {
	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	symbol := settings.Currency.Symbol
	if currency == "" {
		currency = settings.Currency.Code
	} else if currency != strings.ToUpper(settings.Currency.Code) {
		symbol = ""
	}

	receipt := &entity.Receipt{
		OrganizationID:   orgID,
		ReceiptNumber:    receiptNumber,
		ReceiptTypeID:    receiptType.ID,
		ContactID:        &contactID,
		RecipientName:    strings.TrimSpace(input.RecipientName),
		RecipientEmail:   strings.TrimSpace(input.RecipientEmail),
		RecipientPhone:   strings.TrimSpace(input.RecipientPhone),
		RecipientAddress: strings.TrimSpace(input.Address),
		TotalAmount:      breakdown.TotalCents,
		Currency:         currency,
		CurrencySymbol:   symbol,
		Date:             input.Date,
		Status:           enum.ReceiptStatusDraft,
		Notes:            input.Notes,
	}

	// tax fields are only recorded for tax-applicable types
	if receiptType.TaxApplicable {
		subtotal := breakdown.SubtotalCents
		tax := breakdown.TaxCents
		receipt.SubtotalAmount = &subtotal
		receipt.TaxAmount = &tax
		receipt.TaxDisabled = input.TaxDisabled
		if breakdown.TaxApplied {
			pct := breakdown.Percentage
			name := breakdown.Name
			receipt.TaxPercentage = &pct
			receipt.TaxName = &name
		}
	}

	receipt.Items = make([]entity.ReceiptItem, len(input.Items))
	for i, item := range input.Items {
		line := entity.ReceiptItem{
			ItemCategoryID: item.ItemCategoryID,
			Name:           strings.TrimSpace(item.Name),
			Quantity:       item.Quantity,
			Amount:         money.ToCents(item.Amount),
			Position:       i,
		}
		if item.UnitPrice != nil {
			unit := money.ToCents(*item.UnitPrice)
			line.UnitPrice = &unit
		}
		receipt.Items[i] = line
	}
	return receipt
}

// validateIssueInput checks everything that can be checked without the database
func validateIssueInput(input *IssueReceiptInput) error {
	var fieldErrors []apperror.FieldError

	if strings.TrimSpace(input.RecipientName) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "recipient_name", Message: "recipient name is required"})
	}
	if input.ReceiptTypeID == uuid.Nil {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "receipt_type_id", Message: "receipt type is required"})
	}
	if len(input.Items) == 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "items", Message: "at least one item is required"})
	}
	if input.Date.IsZero() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "date", Message: "date is required"})
	}

	for i, item := range input.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ItemCategoryID == uuid.Nil {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".item_category_id", Message: "item category is required"})
		}
		if item.Amount < 0 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".amount", Message: "amount must not be negative"})
		}
		if money.HasSubCent(item.Amount) {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".amount", Message: "amount has more than two decimal places"})
		}
		if item.Quantity != nil && item.UnitPrice != nil {
			expected := *item.Quantity * *item.UnitPrice
			if !money.WithinCent(expected, money.ToCents(item.Amount)) {
				fieldErrors = append(fieldErrors, apperror.FieldError{Field: field + ".amount", Message: "amount must equal quantity times unit price"})
			}
		}
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}

// GetReceipt returns a receipt with its items
func (s *ReceiptService) GetReceipt(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	receipt, err := s.store.Repos().Receipts.GetWithDetails(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if receipt == nil {
		return nil, apperror.NewNotFoundError("Receipt")
	}
	return receipt, nil
}

// ListReceipts returns receipts with page-based pagination
func (s *ReceiptService) ListReceipts(ctx context.Context, filter repository.ReceiptFilter, params *pagination.PaginationParams) (*pagination.PaginatedResult[entity.Receipt], error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	receipts, total, err := s.store.Repos().Receipts.List(ctx, orgID, filter, params)
	if err != nil {
		return nil, err
	}

	return pagination.NewPaginatedResult(receipts, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}

// VoidReceipt marks a receipt voided and removes its total from the contact's
// running contributions. The receipt number stays retired.
func (s *ReceiptService) VoidReceipt(ctx context.Context, id uuid.UUID, reason string) (*entity.Receipt, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	var voided *entity.Receipt
	err := s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		receipt, err := tx.Receipts.GetByID(ctx, orgID, id)
		if err != nil {
			return err
		}
		if receipt == nil {
			return apperror.NewNotFoundError("Receipt")
		}
		if receipt.IsVoided() {
			return apperror.NewValidationMessage("receipt is already voided")
		}

		now := s.now()
		reason = strings.TrimSpace(reason)
		err = tx.Receipts.UpdateFields(ctx, orgID, id, map[string]interface{}{
			"status":      enum.ReceiptStatusVoided,
			"voided_at":   now,
			"void_reason": reason,
		})
		if err != nil {
			return err
		}

		if receipt.ContactID != nil {
			if err := tx.Contacts.AddContribution(ctx, orgID, *receipt.ContactID, -receipt.TotalAmount, nil); err != nil {
				return err
			}
		}

		s.audit.Record(ctx, tx.AuditLogs, AuditEntry{
			OrganizationID: orgID,
			Action:         entity.AuditActionVoidReceipt,
			ResourceType:   "receipt",
			ResourceID:     id.String(),
			Details: map[string]interface{}{
				"receipt_number": receipt.ReceiptNumber,
				"reason":         reason,
				"total_amount":   money.Format(receipt.TotalAmount),
			},
		})

		receipt.Status = enum.ReceiptStatusVoided
		receipt.VoidedAt = &now
		receipt.VoidReason = reason
		voided = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return voided, nil
}

// MarkSent records that the receipt was delivered to its recipient
func (s *ReceiptService) MarkSent(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	return s.transition(ctx, id, enum.ReceiptStatusSent, "sent_at")
}

// MarkViewed records that the recipient opened the receipt
func (s *ReceiptService) MarkViewed(ctx context.Context, id uuid.UUID) (*entity.Receipt, error) {
	return s.transition(ctx, id, enum.ReceiptStatusViewed, "viewed_at")
}

func (s *ReceiptService) transition(ctx context.Context, id uuid.UUID, next enum.ReceiptStatus, stampColumn string) (*entity.Receipt, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	var updated *entity.Receipt
	err := s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		receipt, err := tx.Receipts.GetByID(ctx, orgID, id)
		if err != nil {
			return err
		}
		if receipt == nil {
			return apperror.NewNotFoundError("Receipt")
		}
		if !receipt.Status.CanTransitionTo(next) {
			return apperror.NewValidationMessage(fmt.Sprintf("cannot move receipt from %s to %s", receipt.Status, next))
		}
		if receipt.Status == next {
			updated = receipt
			return nil
		}

		now := s.now()
		if err := tx.Receipts.UpdateFields(ctx, orgID, id, map[string]interface{}{
			"status":    next,
			stampColumn: now,
		}); err != nil {
			return err
		}

		receipt.Status = next
		switch next {
		case enum.ReceiptStatusSent:
			receipt.SentAt = &now
		case enum.ReceiptStatusViewed:
			receipt.ViewedAt = &now
		}
		updated = receipt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
