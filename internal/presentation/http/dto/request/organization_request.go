package request

// CreateOrganizationRequest represents an organization creation request
type CreateOrganizationRequest struct {
	Name           string `json:"name" binding:"required,min=2,max=255"`
	Email          string `json:"email" binding:"omitempty,email"`
	ReceiptPrefix  string `json:"receipt_prefix" binding:"omitempty,max=50"`
	CurrencyCode   string `json:"currency_code" binding:"omitempty,len=3"`
	CurrencySymbol string `json:"currency_symbol" binding:"omitempty,max=10"`
}

// AddMemberRequest adds an identity provider user to the current organization
type AddMemberRequest struct {
	UserID string `json:"user_id" binding:"required,max=255"`
	Email  string `json:"email" binding:"omitempty,email"`
	Role   string `json:"role" binding:"required,oneof=admin member"`
}
