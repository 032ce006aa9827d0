package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/receiptly/receiptly-api/internal/application/service"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/request"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/response"
	"github.com/receiptly/receiptly-api/pkg/apperror"
	"github.com/receiptly/receiptly-api/pkg/pagination"
)

// ReceiptHandler handles receipt issuance, lifecycle and delivery requests
type ReceiptHandler struct {
	receiptService  *service.ReceiptService
	deliveryService *service.DeliveryService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService, deliveryService *service.DeliveryService) *ReceiptHandler {
	return &ReceiptHandler{
		receiptService:  receiptService,
		deliveryService: deliveryService,
	}
}

// Issue handles receipt issuance
func (h *ReceiptHandler) Issue(c *gin.Context) {
	var req request.IssueReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		response.ValidationError(c, []apperror.FieldError{{Field: "date", Message: "must be a date (YYYY-MM-DD) or RFC3339 timestamp"}})
		return
	}

	items := make([]service.ReceiptItemInput, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.ReceiptItemInput{
			ItemCategoryID: item.ItemCategoryID,
			Name:           item.Name,
			Quantity:       item.Quantity,
			UnitPrice:      item.UnitPrice,
			Amount:         item.Amount,
		}
	}

	result, err := h.receiptService.IssueReceipt(c.Request.Context(), &service.IssueReceiptInput{
		ReceiptTypeID:  req.ReceiptTypeID,
		Items:          items,
		RecipientName:  req.RecipientName,
		RecipientEmail: req.RecipientEmail,
		RecipientPhone: req.RecipientPhone,
		Address:        req.Address,
		ContactID:      req.ContactID,
		TotalAmount:    req.TotalAmount,
		Currency:       req.Currency,
		Date:           date,
		Notes:          req.Notes,
		TaxDisabled:    req.TaxDisabled,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt issued successfully", result)
}

// List handles listing receipts
func (h *ReceiptHandler) List(c *gin.Context) {
	var req request.ReceiptFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := repository.ReceiptFilter{
		ContactID:     optionalUUID(req.ContactID),
		ReceiptTypeID: optionalUUID(req.ReceiptTypeID),
		Search:        req.Search,
	}

	if req.Status != "" {
		status, err := enum.ParseReceiptStatus(req.Status)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.Status = &status
	}
	if req.StartDate != "" {
		if start, err := parseDate(req.StartDate); err == nil {
			filter.From = &start
		}
	}
	if req.EndDate != "" {
		if end, err := parseDate(req.EndDate); err == nil {
			filter.To = &end
		}
	}

	params := &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage}
	params.Validate()

	result, err := h.receiptService.ListReceipts(c.Request.Context(), filter, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Receipts retrieved successfully", result)
}

// Get handles getting a single receipt with its items
func (h *ReceiptHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// Void handles voiding a receipt
func (h *ReceiptHandler) Void(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.VoidReceiptRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	receipt, err := h.receiptService.VoidReceipt(c.Request.Context(), id, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt voided successfully", receipt)
}

// Send emails the receipt PDF to its recipient
func (h *ReceiptHandler) Send(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req request.SendReceiptRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	receipt, err := h.deliveryService.SendReceipt(c.Request.Context(), id, req.Email)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt sent successfully", receipt)
}

// MarkViewed records that the recipient opened the receipt
func (h *ReceiptHandler) MarkViewed(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	receipt, err := h.receiptService.MarkViewed(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt marked as viewed", receipt)
}

// PDF streams the receipt as a PDF document
func (h *ReceiptHandler) PDF(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	data, receipt, err := h.deliveryService.RenderPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", receipt.ReceiptNumber+".pdf"))
	c.Data(http.StatusOK, "application/pdf", data)
}

// Print sends the receipt to the thermal printer
func (h *ReceiptHandler) Print(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	data, err := h.deliveryService.PrintReceipt(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt sent to printer", gin.H{"bytes": len(data)})
}

// PrinterStatus returns the printer connection status
func (h *ReceiptHandler) PrinterStatus(c *gin.Context) {
	response.OK(c, "Printer status retrieved", h.deliveryService.GetPrinterStatus())
}
