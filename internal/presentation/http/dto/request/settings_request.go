package request

// CurrencyRequest is the currency block of the settings
type CurrencyRequest struct {
	Code   string `json:"code" binding:"required,len=3"`
	Symbol string `json:"symbol" binding:"max=10"`
}

// SalesTaxRequest is the sales tax block of the settings
type SalesTaxRequest struct {
	Enabled    bool    `json:"enabled"`
	Percentage float64 `json:"percentage" binding:"min=0,max=100"`
	Name       string  `json:"name" binding:"max=100"`
}

// UpdateSettingsRequest represents a partial settings update
type UpdateSettingsRequest struct {
	ReceiptNumberingFormat *string          `json:"receipt_numbering_format" binding:"omitempty,max=255"`
	ReceiptPrefix          *string          `json:"receipt_prefix" binding:"omitempty,max=50"`
	Currency               *CurrencyRequest `json:"currency"`
	SalesTax               *SalesTaxRequest `json:"sales_tax"`
	ReceiptFooter          *string          `json:"receipt_footer" binding:"omitempty,max=1000"`
}
