package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// ReceiptStatus represents where a receipt is in its delivery lifecycle
type ReceiptStatus int

const (
	ReceiptStatusDraft  ReceiptStatus = 0
	ReceiptStatusSent   ReceiptStatus = 1
	ReceiptStatusViewed ReceiptStatus = 2
	ReceiptStatusVoided ReceiptStatus = 3
)

var receiptStatusNames = [...]string{"Draft", "Sent", "Viewed", "Voided"}

func (s ReceiptStatus) String() string {
	if int(s) < 0 || int(s) >= len(receiptStatusNames) {
		return "Draft"
	}
	return receiptStatusNames[s]
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Draft -> Sent -> Viewed, and any non-voided receipt may be voided.
func (s ReceiptStatus) CanTransitionTo(next ReceiptStatus) bool {
	switch next {
	case ReceiptStatusSent:
		return s == ReceiptStatusDraft || s == ReceiptStatusSent
	case ReceiptStatusViewed:
		return s == ReceiptStatusSent || s == ReceiptStatusViewed
	case ReceiptStatusVoided:
		return s != ReceiptStatusVoided
	default:
		return false
	}
}

// ParseReceiptStatus parses a status name such as "Sent", ignoring case.
func ParseReceiptStatus(str string) (ReceiptStatus, error) {
	for i, name := range receiptStatusNames {
		if strings.EqualFold(name, str) {
			return ReceiptStatus(i), nil
		}
	}
	return ReceiptStatusDraft, fmt.Errorf("unknown receipt status %q", str)
}

func (s ReceiptStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *ReceiptStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = ReceiptStatus(i)
		return nil
	}
	parsed, err := ParseReceiptStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s ReceiptStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *ReceiptStatus) Scan(value interface{}) error {
	if value == nil {
		*s = ReceiptStatusDraft
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = ReceiptStatus(v)
	case int:
		*s = ReceiptStatus(v)
	}
	return nil
}
