package request

import "github.com/google/uuid"

// CreateReceiptTypeRequest represents a receipt type creation request
type CreateReceiptTypeRequest struct {
	Name          string `json:"name" binding:"required,min=2,max=100"`
	Kind          string `json:"kind" binding:"omitempty,oneof=donation sales service custom"`
	TaxApplicable *bool  `json:"tax_applicable"`
	Description   string `json:"description" binding:"max=500"`
}

// CreateItemCategoryRequest represents an item category creation request
type CreateItemCategoryRequest struct {
	ReceiptTypeID uuid.UUID `json:"receipt_type_id" binding:"required"`
	Name          string    `json:"name" binding:"required,min=2,max=100"`
	Description   string    `json:"description" binding:"max=500"`
}
