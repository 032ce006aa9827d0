package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/receiptly/receiptly-api/internal/application/service"
	"github.com/receiptly/receiptly-api/internal/domain/entity"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/request"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles organization settings requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings retrieves the current organization's settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", settings)
}

// UpdateSettings updates the current organization's settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.UpdateSettingsInput{
		ReceiptNumberingFormat: req.ReceiptNumberingFormat,
		ReceiptPrefix:          req.ReceiptPrefix,
		ReceiptFooter:          req.ReceiptFooter,
	}
	if req.Currency != nil {
		input.Currency = &entity.CurrencySettings{Code: req.Currency.Code, Symbol: req.Currency.Symbol}
	}
	if req.SalesTax != nil {
		input.SalesTax = &entity.SalesTaxSettings{
			Enabled:    req.SalesTax.Enabled,
			Percentage: req.SalesTax.Percentage,
			Name:       req.SalesTax.Name,
		}
	}

	settings, err := h.settingsService.UpdateSettings(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", settings)
}
