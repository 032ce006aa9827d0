package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/receiptly/receiptly-api/internal/application/service"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/request"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/response"
)

// CatalogHandler handles receipt types, item categories and contact types
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// ListReceiptTypes lists receipt types with their categories
func (h *CatalogHandler) ListReceiptTypes(c *gin.Context) {
	types, err := h.catalogService.ListReceiptTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt types retrieved successfully", types)
}

// CreateReceiptType creates a receipt type
func (h *CatalogHandler) CreateReceiptType(c *gin.Context) {
	var req request.CreateReceiptTypeRequest
	if !bindJSON(c, &req) {
		return
	}

	receiptType, err := h.catalogService.CreateReceiptType(c.Request.Context(), &service.CreateReceiptTypeInput{
		Name:          req.Name,
		Kind:          enum.ReceiptKind(req.Kind),
		TaxApplicable: req.TaxApplicable,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt type created successfully", receiptType)
}

// ListItemCategories lists item categories, optionally filtered by receipt_type_id
func (h *CatalogHandler) ListItemCategories(c *gin.Context) {
	categories, err := h.catalogService.ListItemCategories(c.Request.Context(), optionalUUID(c.Query("receipt_type_id")))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item categories retrieved successfully", categories)
}

// CreateItemCategory creates an item category under a receipt type
func (h *CatalogHandler) CreateItemCategory(c *gin.Context) {
	var req request.CreateItemCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.catalogService.CreateItemCategory(c.Request.Context(), &service.CreateItemCategoryInput{
		ReceiptTypeID: req.ReceiptTypeID,
		Name:          req.Name,
		Description:   req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Item category created successfully", category)
}

// ListContactTypes lists contact types
func (h *CatalogHandler) ListContactTypes(c *gin.Context) {
	types, err := h.catalogService.ListContactTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Contact types retrieved successfully", types)
}
