package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/receiptly/receiptly-api/internal/application/service"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/response"
)

// AuditHandler exposes the organization's audit trail
type AuditHandler struct {
	auditService *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List handles listing audit log entries, newest first, optionally filtered by action
func (h *AuditHandler) List(c *gin.Context) {
	result, err := h.auditService.List(c.Request.Context(), c.Query("action"), paginationFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Audit logs retrieved successfully", result)
}
