package service

import (
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/money"
)

// ErrTotalMismatch is the message returned when a supplied total does not reconcile
const ErrTotalMismatch = "total does not match computed subtotal+tax"

// TaxBreakdown is the recomputed money for a candidate receipt, in cents
type TaxBreakdown struct {
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
	// TaxApplied is true when tax was actually computed
	TaxApplied bool
	Percentage float64
	Name       string
}

// ComputeTax sums item amounts and, for tax-applicable receipt types with tax
// enabled and not disabled on the receipt, adds tax rounded half-up to the cent.
func ComputeTax(items []ReceiptItemInput, receiptType *entity.ReceiptType, tax entity.SalesTaxSettings, disableOverride bool) TaxBreakdown {
	var subtotal int64
	for _, item := range items {
		subtotal += money.ToCents(item.Amount)
	}

	breakdown := TaxBreakdown{
		SubtotalCents: subtotal,
		TotalCents:    subtotal,
	}

	if receiptType == nil || !receiptType.TaxApplicable || !tax.Enabled || disableOverride {
		return breakdown
	}

	breakdown.TaxApplied = true
	breakdown.Percentage = tax.Percentage
	breakdown.Name = tax.Name
	breakdown.TaxCents = money.PercentOf(subtotal, tax.Percentage)
	breakdown.TotalCents = subtotal + breakdown.TaxCents
	return breakdown
}

// ReconcileTotal checks the caller-supplied total against the breakdown.
// Tax-applicable receipts accept a difference strictly below one cent; every
// other receipt must match the subtotal exactly.
func ReconcileTotal(breakdown TaxBreakdown, supplied float64, taxApplicable bool) error {
	if taxApplicable {
		if money.WithinCent(supplied, breakdown.TotalCents) {
			return nil
		}
		return apperror.NewValidationMessage(ErrTotalMismatch)
	}

	if money.HasSubCent(supplied) || money.ToCents(supplied) != breakdown.SubtotalCents {
		return apperror.NewValidationMessage(ErrTotalMismatch)
	}
	return nil
}
