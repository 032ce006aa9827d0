// Package money converts between decimal amounts used on the wire and the
// integer minor units (cents) stored in the database.
package money

import (
	"fmt"
	"math"
)

// subCentEpsilon absorbs binary floating point noise such as 0.1*100 = 10.000000000000002.
const subCentEpsilon = 1e-6

// ToCents converts a decimal amount to cents, rounding half away from zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts cents back to a decimal amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// HasSubCent reports whether amount carries a fraction of a cent.
func HasSubCent(amount float64) bool {
	scaled := amount * 100
	return math.Abs(scaled-math.Round(scaled)) > subCentEpsilon
}

// CentDistance returns how far amount is from cents, measured in cents.
func CentDistance(amount float64, cents int64) float64 {
	return math.Abs(amount*100 - float64(cents))
}

// WithinCent reports whether amount is strictly less than one cent away from
// cents. Float noise in amount*100 never turns a one cent gap into a match.
func WithinCent(amount float64, cents int64) bool {
	return CentDistance(amount, cents) < 1-subCentEpsilon
}

// PercentOf returns pct percent of cents rounded half-up to the nearest cent.
// The percentage is resolved to basis points first so 8.5 is exactly 850.
func PercentOf(cents int64, pct float64) int64 {
	bp := int64(math.Round(pct * 100))
	product := cents * bp
	if product >= 0 {
		return (product + 5000) / 10000
	}
	return -((-product + 5000) / 10000)
}

// Format renders cents as a plain two decimal string, e.g. 108500 -> "1085.00".
func Format(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatWithSymbol prefixes a currency symbol, e.g. "$1085.00".
func FormatWithSymbol(symbol string, cents int64) string {
	if cents < 0 {
		return "-" + symbol + Format(-cents)
	}
	return symbol + Format(cents)
}
