package service

import (
	"fmt"
	"strings"
	"time"
)

// DefaultReceiptPrefix is used when neither an explicit prefix nor a type name is available
const DefaultReceiptPrefix = "RCP"

// Receipt numbering placeholders
const (
	placeholderPrefix = "{PREFIX}"
	placeholderYear   = "{YEAR}"
	placeholderMonth  = "{MONTH}"
	placeholderNumber = "{NUMBER}"
	placeholderOrg    = "{ORG}"
)

// FormatReceiptNumber renders a receipt number from template.
// Each known placeholder is replaced at its first occurrence only, the output is
// never rescanned, and unknown placeholders are copied through untouched.
// An empty template falls back to "{PREFIX}-{YEAR}-{NUMBER}".
func FormatReceiptNumber(template, prefix string, counter int64, date time.Time, orgName string) string {
	if template == "" {
		template = "{PREFIX}-{YEAR}-{NUMBER}"
	}

	values := map[string]string{
		placeholderPrefix: prefix,
		placeholderYear:   fmt.Sprintf("%04d", date.Year()),
		placeholderMonth:  fmt.Sprintf("%02d", int(date.Month())),
		placeholderNumber: fmt.Sprintf("%04d", counter),
		placeholderOrg:    upperHead(orgName, 3),
	}
	used := make(map[string]bool, len(values))

	var sb strings.Builder
	for i := 0; i < len(template); {
		if template[i] == '{' {
			if ph, ok := matchPlaceholder(template[i:], used); ok {
				sb.WriteString(values[ph])
				used[ph] = true
				i += len(ph)
				continue
			}
		}
		sb.WriteByte(template[i])
		i++
	}
	return sb.String()
}

func matchPlaceholder(s string, used map[string]bool) (string, bool) {
	for _, ph := range []string{placeholderPrefix, placeholderYear, placeholderMonth, placeholderNumber, placeholderOrg} {
		if !used[ph] && strings.HasPrefix(s, ph) {
			return ph, true
		}
	}
	return "", false
}

// ResolvePrefix picks the {PREFIX} value: the explicit setting when present,
// else the first three characters of the receipt type name uppercased, else "RCP".
func ResolvePrefix(explicit *string, receiptTypeName string) string {
	if explicit != nil {
		if p := strings.TrimSpace(*explicit); p != "" {
			return p
		}
	}
	if head := upperHead(strings.TrimSpace(receiptTypeName), 3); head != "" {
		return head
	}
	return DefaultReceiptPrefix
}

func upperHead(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return strings.ToUpper(string(r))
}
