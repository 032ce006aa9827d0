package request

import "github.com/google/uuid"

// ReceiptItemRequest is one line item of a new receipt
type ReceiptItemRequest struct {
	ItemCategoryID uuid.UUID `json:"item_category_id" binding:"required"`
	Name           string    `json:"name" binding:"max=255"`
	Quantity       *float64  `json:"quantity" binding:"omitempty,gt=0"`
	UnitPrice      *float64  `json:"unit_price" binding:"omitempty,min=0"`
	Amount         float64   `json:"amount" binding:"min=0"`
}

// IssueReceiptRequest represents a receipt issuance request
type IssueReceiptRequest struct {
	ReceiptTypeID  uuid.UUID            `json:"receipt_type_id" binding:"required"`
	Items          []ReceiptItemRequest `json:"items" binding:"required,min=1,dive"`
	RecipientName  string               `json:"recipient_name" binding:"required,max=255"`
	RecipientEmail string               `json:"recipient_email" binding:"omitempty,email"`
	RecipientPhone string               `json:"recipient_phone" binding:"omitempty,max=50"`
	Address        string               `json:"address"`
	ContactID      *uuid.UUID           `json:"contact_id"`
	TotalAmount    float64              `json:"total_amount" binding:"min=0"`
	Currency       string               `json:"currency" binding:"omitempty,len=3"`
	Date           string               `json:"date" binding:"required"` // YYYY-MM-DD or RFC3339
	Notes          string               `json:"notes"`
	TaxDisabled    bool                 `json:"tax_disabled"`
}

// VoidReceiptRequest represents a void request
type VoidReceiptRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// SendReceiptRequest optionally overrides the recipient email
type SendReceiptRequest struct {
	Email string `json:"email" binding:"omitempty,email"`
}

// ReceiptFilterRequest represents receipt list query parameters
type ReceiptFilterRequest struct {
	Status        string `form:"status"`
	ContactID     string `form:"contact_id"`
	ReceiptTypeID string `form:"receipt_type_id"`
	StartDate     string `form:"start_date"`
	EndDate       string `form:"end_date"`
	Search        string `form:"search"`
	Page          int    `form:"page"`
	PerPage       int    `form:"per_page"`
}
