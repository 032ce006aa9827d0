package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
)

// RecipientData is the recipient as typed on a receipt
type RecipientData struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

func (d RecipientData) normalized() RecipientData {
	return RecipientData{
		Name:    strings.TrimSpace(d.Name),
		Email:   strings.TrimSpace(d.Email),
		Phone:   strings.TrimSpace(d.Phone),
		Address: strings.TrimSpace(d.Address),
	}
}

// ContactResolver maps receipt recipients onto persistent contacts
type ContactResolver struct {
	audit *AuditService
}

// NewContactResolver creates a new contact resolver
func NewContactResolver(audit *AuditService) *ContactResolver {
	return &ContactResolver{audit: audit}
}

// Resolve finds or creates the contact for data inside tx. Precedence:
//  1. email match: overwrite a differing name or phone with the supplied one
//  2. name match: fill email or phone only where the stored field is empty
//  3. otherwise create an Individual contact with a zero running total
func (r *ContactResolver) Resolve(ctx context.Context, tx *repository.Repositories, data RecipientData, orgID uuid.UUID) (uuid.UUID, error) {
	data = data.normalized()

	if data.Email != "" {
		contact, err := tx.Contacts.GetByEmail(ctx, orgID, data.Email)
		if err != nil {
			return uuid.Nil, err
		}
		if contact != nil {
			updates := map[string]interface{}{}
			if data.Name != "" && data.Name != contact.Name {
				updates["name"] = data.Name
			}
			if data.Phone != "" && data.Phone != contact.Phone {
				updates["phone"] = data.Phone
			}
			if err := tx.Contacts.UpdateFields(ctx, orgID, contact.ID, updates); err != nil {
				return uuid.Nil, err
			}
			return contact.ID, nil
		}
	}

	if data.Name != "" {
		contact, err := tx.Contacts.GetByName(ctx, orgID, data.Name)
		if err != nil {
			return uuid.Nil, err
		}
		if contact != nil {
			updates := map[string]interface{}{}
			if contact.Email == "" && data.Email != "" {
				updates["email"] = data.Email
			}
			if contact.Phone == "" && data.Phone != "" {
				updates["phone"] = data.Phone
			}
			if err := tx.Contacts.UpdateFields(ctx, orgID, contact.ID, updates); err != nil {
				return uuid.Nil, err
			}
			return contact.ID, nil
		}
	}

	contactType, err := r.defaultContactType(ctx, tx, orgID)
	if err != nil {
		return uuid.Nil, err
	}

	contact := &entity.Contact{
		OrganizationID: orgID,
		ContactTypeID:  contactType.ID,
		Name:           data.Name,
		Email:          data.Email,
		Phone:          data.Phone,
		Address:        data.Address,
	}
	if err := tx.Contacts.Create(ctx, contact); err != nil {
		return uuid.Nil, err
	}

	r.audit.Record(ctx, tx.AuditLogs, AuditEntry{
		OrganizationID: orgID,
		Action:         entity.AuditActionCreateContact,
		ResourceType:   "contact",
		ResourceID:     contact.ID.String(),
		Details:        map[string]interface{}{"name": contact.Name, "source": "receipt"},
	})

	return contact.ID, nil
}

// defaultContactType returns the organization's Individual type, creating it
// when an organization predates provisioning.
func (r *ContactResolver) defaultContactType(ctx context.Context, tx *repository.Repositories, orgID uuid.UUID) (*entity.ContactType, error) {
	contactType, err := tx.ContactTypes.GetByName(ctx, orgID, entity.DefaultContactTypeName)
	if err != nil {
		return nil, err
	}
	if contactType != nil {
		return contactType, nil
	}

	contactType = &entity.ContactType{OrganizationID: orgID, Name: entity.DefaultContactTypeName}
	if err := tx.ContactTypes.Create(ctx, contactType); err != nil {
		return nil, err
	}
	return contactType, nil
}
