package service

import (
	"testing"

	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

var (
	salesType    = &entity.ReceiptType{Name: "Sales", Kind: enum.ReceiptKindSales, TaxApplicable: true}
	donationType = &entity.ReceiptType{Name: "Donation", Kind: enum.ReceiptKindDonation}
	taxEnabled   = entity.SalesTaxSettings{Enabled: true, Percentage: 8.5, Name: "Sales Tax"}
)

func amounts(values ...float64) []ReceiptItemInput {
	items := make([]ReceiptItemInput, len(values))
	for i, v := range values {
		items[i] = ReceiptItemInput{Amount: v}
	}
	return items
}

func TestComputeTaxSales(t *testing.T) {
	b := ComputeTax(amounts(600, 400), salesType, taxEnabled, false)

	assert.True(t, b.TaxApplied)
	assert.Equal(t, int64(100000), b.SubtotalCents)
	assert.Equal(t, int64(8500), b.TaxCents)
	assert.Equal(t, int64(108500), b.TotalCents)
	assert.Equal(t, "Sales Tax", b.Name)
}

func TestComputeTaxNotApplied(t *testing.T) {
	tests := []struct {
		name     string
		rt       *entity.ReceiptType
		settings entity.SalesTaxSettings
		disable  bool
	}{
		{"disabled on receipt", salesType, taxEnabled, true},
		{"disabled in settings", salesType, entity.SalesTaxSettings{Percentage: 8.5}, false},
		{"not tax applicable", donationType, taxEnabled, false},
		{"renamed sales type without flag", &entity.ReceiptType{Name: "Sales"}, taxEnabled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := ComputeTax(amounts(1000), tt.rt, tt.settings, tt.disable)
			assert.False(t, b.TaxApplied)
			assert.Equal(t, int64(0), b.TaxCents)
			assert.Equal(t, int64(100000), b.TotalCents)
		})
	}
}

func TestComputeTaxRoundsHalfUp(t *testing.T) {
	// 10.10 * 5% = 0.505 -> 0.51
	b := ComputeTax(amounts(10.10), salesType, entity.SalesTaxSettings{Enabled: true, Percentage: 5}, false)
	assert.Equal(t, int64(51), b.TaxCents)
	assert.Equal(t, int64(1061), b.TotalCents)
}

func TestReconcileTotalSales(t *testing.T) {
	b := ComputeTax(amounts(1000), salesType, taxEnabled, false)

	assert.NoError(t, ReconcileTotal(b, 1085.00, true))
	assert.NoError(t, ReconcileTotal(b, 1085.004, true))

	err := ReconcileTotal(b, 1084.99, true)
	assert.True(t, apperror.IsValidation(err))
	assert.Contains(t, err.Error(), ErrTotalMismatch)
}

func TestReconcileTotalSalesRejectsOneCentOff(t *testing.T) {
	for cents := int64(1); cents < 200000; cents++ {
		b := TaxBreakdown{SubtotalCents: cents, TotalCents: cents}

		if err := ReconcileTotal(b, float64(cents)/100, true); err != nil {
			t.Fatalf("exact total %d rejected: %v", cents, err)
		}
		if ReconcileTotal(b, float64(cents+1)/100, true) == nil {
			t.Fatalf("total one cent over %d accepted", cents)
		}
		if ReconcileTotal(b, float64(cents-1)/100, true) == nil {
			t.Fatalf("total one cent under %d accepted", cents)
		}
	}
}

func TestReconcileTotalTaxDisabled(t *testing.T) {
	b := ComputeTax(amounts(1000), salesType, taxEnabled, true)
	assert.NoError(t, ReconcileTotal(b, 1000.00, true))
	assert.Error(t, ReconcileTotal(b, 1085.00, true))
}

func TestReconcileTotalNonSalesIsExact(t *testing.T) {
	b := ComputeTax(amounts(500, 300), donationType, taxEnabled, false)

	assert.NoError(t, ReconcileTotal(b, 800, false))
	assert.True(t, apperror.IsValidation(ReconcileTotal(b, 800.01, false)))
	assert.True(t, apperror.IsValidation(ReconcileTotal(b, 800.004, false)))
}
