package request

import "github.com/google/uuid"

// CreateContactRequest represents a contact creation request
type CreateContactRequest struct {
	Name          string     `json:"name" binding:"required,min=1,max=255"`
	Email         string     `json:"email" binding:"omitempty,email"`
	Phone         string     `json:"phone" binding:"omitempty,max=50"`
	Address       string     `json:"address"`
	Notes         string     `json:"notes"`
	ContactTypeID *uuid.UUID `json:"contact_type_id"`
}

// UpdateContactRequest represents a contact update request
type UpdateContactRequest struct {
	Name          *string    `json:"name" binding:"omitempty,min=1,max=255"`
	Email         *string    `json:"email" binding:"omitempty,email"`
	Phone         *string    `json:"phone" binding:"omitempty,max=50"`
	Address       *string    `json:"address"`
	Notes         *string    `json:"notes"`
	ContactTypeID *uuid.UUID `json:"contact_type_id"`
}
