package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatReceiptNumber(t *testing.T) {
	date := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		template string
		prefix   string
		counter  int64
		orgName  string
		expected string
	}{
		{"default template", "{PREFIX}-{YEAR}-{NUMBER}", "REC", 42, "Acme", "REC-2024-0042"},
		{"empty template uses default", "", "REC", 42, "Acme", "REC-2024-0042"},
		{"all placeholders", "{ORG}/{PREFIX}/{YEAR}/{MONTH}/{NUMBER}", "DON", 7, "hope foundation", "HOP/DON/2024/03/0007"},
		{"first occurrence only", "{NUMBER}-{NUMBER}", "X", 1, "Acme", "0001-{NUMBER}"},
		{"unknown placeholder kept", "{PREFIX}-{DAY}-{NUMBER}", "REC", 5, "Acme", "REC-{DAY}-0005"},
		{"case sensitive", "{prefix}-{NUMBER}", "REC", 5, "Acme", "{prefix}-0005"},
		{"counter wider than padding", "{NUMBER}", "REC", 123456, "Acme", "123456"},
		{"short org name", "{ORG}-{NUMBER}", "REC", 1, "ab", "AB-0001"},
		{"non recursive", "{PREFIX}-{NUMBER}", "{YEAR}", 3, "Acme", "{YEAR}-0003"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatReceiptNumber(tt.template, tt.prefix, tt.counter, date, tt.orgName))
		})
	}
}

func TestFormatReceiptNumberIsPure(t *testing.T) {
	date := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	first := FormatReceiptNumber("{PREFIX}-{YEAR}-{NUMBER}", "REC", 42, date, "Acme")
	second := FormatReceiptNumber("{PREFIX}-{YEAR}-{NUMBER}", "REC", 42, date, "Acme")
	assert.Equal(t, "REC-2024-0042", first)
	assert.Equal(t, first, second)
}

func TestResolvePrefix(t *testing.T) {
	explicit := "INV"
	blank := "  "

	assert.Equal(t, "INV", ResolvePrefix(&explicit, "Sales"))
	assert.Equal(t, "SAL", ResolvePrefix(nil, "Sales"))
	assert.Equal(t, "DON", ResolvePrefix(&blank, "donation"))
	assert.Equal(t, "GI", ResolvePrefix(nil, "gi"))
	assert.Equal(t, "RCP", ResolvePrefix(nil, ""))
}
