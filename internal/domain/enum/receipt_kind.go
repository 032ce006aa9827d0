package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ReceiptKind is the closed set of receipt type variants.
// Tenant-defined types that are not one of the built-ins use ReceiptKindCustom.
type ReceiptKind string

const (
	ReceiptKindDonation ReceiptKind = "donation"
	ReceiptKindSales    ReceiptKind = "sales"
	ReceiptKindService  ReceiptKind = "service"
	ReceiptKindCustom   ReceiptKind = "custom"
)

func (k ReceiptKind) String() string {
	return string(k)
}

// Valid reports whether k is one of the known kinds.
func (k ReceiptKind) Valid() bool {
	switch k {
	case ReceiptKindDonation, ReceiptKindSales, ReceiptKindService, ReceiptKindCustom:
		return true
	}
	return false
}

// DefaultTaxApplicable is the tax applicability a new type of this kind starts with.
func (k ReceiptKind) DefaultTaxApplicable() bool {
	return k == ReceiptKindSales
}

func (k ReceiptKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(k))
}

func (k *ReceiptKind) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	kind := ReceiptKind(str)
	if !kind.Valid() {
		return fmt.Errorf("unknown receipt kind %q", str)
	}
	*k = kind
	return nil
}

func (k ReceiptKind) Value() (driver.Value, error) {
	return string(k), nil
}

func (k *ReceiptKind) Scan(value interface{}) error {
	if value == nil {
		*k = ReceiptKindCustom
		return nil
	}
	switch v := value.(type) {
	case string:
		*k = ReceiptKind(v)
	case []byte:
		*k = ReceiptKind(string(v))
	}
	return nil
}
