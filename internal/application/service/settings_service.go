package service

import (
	"context"
	"strings"

	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/pkg/apperror"
)

// SettingsService handles organization settings
type SettingsService struct {
	store repository.Store
	audit *AuditService
}

// NewSettingsService creates a new settings service
func NewSettingsService(store repository.Store, audit *AuditService) *SettingsService {
	return &SettingsService{store: store, audit: audit}
}

// GetSettings returns the active organization's settings
func (s *SettingsService) GetSettings(ctx context.Context) (*entity.OrganizationSettings, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}

	settings, err := s.store.Repos().Settings.GetByOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		return nil, apperror.NewNotFoundError("Organization settings")
	}
	return settings, nil
}

// UpdateSettingsInput represents a partial settings update; nil fields are left unchanged
type UpdateSettingsInput struct {
	ReceiptNumberingFormat *string
	ReceiptPrefix          *string
	Currency               *entity.CurrencySettings
	SalesTax               *entity.SalesTaxSettings
	ReceiptFooter          *string
}

// UpdateSettings applies input to the active organization's settings. Owners and admins only.
func (s *SettingsService) UpdateSettings(ctx context.Context, input *UpdateSettingsInput) (*entity.OrganizationSettings, error) {
	orgID, ok := infraRepo.GetOrganizationID(ctx)
	if !ok {
		return nil, apperror.NewBadRequestError("Organization context required")
	}
	if err := requireManager(ctx); err != nil {
		return nil, err
	}
	if err := validateSettingsInput(input); err != nil {
		return nil, err
	}

	var updated *entity.OrganizationSettings
	err := s.store.WithTx(ctx, func(ctx context.Context, tx *repository.Repositories) error {
		settings, err := tx.Settings.GetByOrganization(ctx, orgID)
		if err != nil {
			return err
		}
		if settings == nil {
			return apperror.NewNotFoundError("Organization settings")
		}

		changed := []string{}
		if input.ReceiptNumberingFormat != nil {
			settings.ReceiptNumberingFormat = strings.TrimSpace(*input.ReceiptNumberingFormat)
			if settings.ReceiptNumberingFormat == "" {
				settings.ReceiptNumberingFormat = entity.DefaultReceiptNumberingFormat
			}
			changed = append(changed, "receipt_numbering_format")
		}
		if input.ReceiptPrefix != nil {
			prefix := strings.TrimSpace(*input.ReceiptPrefix)
			if prefix == "" {
				settings.ReceiptPrefix = nil
			} else {
				settings.ReceiptPrefix = &prefix
			}
			changed = append(changed, "receipt_prefix")
		}
		if input.Currency != nil {
			settings.Currency = entity.CurrencySettings{
				Code:   strings.ToUpper(strings.TrimSpace(input.Currency.Code)),
				Symbol: strings.TrimSpace(input.Currency.Symbol),
			}
			changed = append(changed, "currency")
		}
		if input.SalesTax != nil {
			settings.SalesTax = *input.SalesTax
			changed = append(changed, "sales_tax")
		}
		if input.ReceiptFooter != nil {
			settings.ReceiptFooter = strings.TrimSpace(*input.ReceiptFooter)
			changed = append(changed, "receipt_footer")
		}
		settings.UpdatedBy, _ = infraRepo.GetUserID(ctx)

		if err := tx.Settings.Update(ctx, settings); err != nil {
			return err
		}

		s.audit.Record(ctx, tx.AuditLogs, AuditEntry{
			OrganizationID: orgID,
			Action:         entity.AuditActionUpdateSettings,
			ResourceType:   "organization_settings",
			ResourceID:     settings.ID.String(),
			Details:        map[string]interface{}{"fields": changed},
		})
		updated = settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func validateSettingsInput(input *UpdateSettingsInput) error {
	var fieldErrors []apperror.FieldError

	if input.SalesTax != nil {
		if input.SalesTax.Percentage < 0 || input.SalesTax.Percentage > 100 {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "sales_tax.percentage", Message: "percentage must be between 0 and 100"})
		}
		if input.SalesTax.Enabled && strings.TrimSpace(input.SalesTax.Name) == "" {
			fieldErrors = append(fieldErrors, apperror.FieldError{Field: "sales_tax.name", Message: "tax name is required when tax is enabled"})
		}
	}
	if input.Currency != nil && strings.TrimSpace(input.Currency.Code) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "currency.code", Message: "currency code is required"})
	}
	if input.ReceiptPrefix != nil && len(strings.TrimSpace(*input.ReceiptPrefix)) > 50 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "receipt_prefix", Message: "prefix must be at most 50 characters"})
	}

	if len(fieldErrors) > 0 {
		return apperror.NewValidationError(fieldErrors)
	}
	return nil
}
