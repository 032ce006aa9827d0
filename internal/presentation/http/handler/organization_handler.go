package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/receiptly/receiptly-api/internal/application/service"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/request"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/response"
)

// OrganizationHandler handles organization-related HTTP requests
type OrganizationHandler struct {
	organizationService *service.OrganizationService
}

// NewOrganizationHandler creates a new organization handler
func NewOrganizationHandler(organizationService *service.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizationService: organizationService}
}

// Create handles organization creation; the caller becomes its owner
func (h *OrganizationHandler) Create(c *gin.Context) {
	var req request.CreateOrganizationRequest
	if !bindJSON(c, &req) {
		return
	}

	email := req.Email
	if email == "" {
		email = GetUserEmail(c)
	}

	org, err := h.organizationService.CreateOrganization(c.Request.Context(), &service.CreateOrganizationInput{
		Name:           req.Name,
		Email:          email,
		ReceiptPrefix:  req.ReceiptPrefix,
		CurrencyCode:   req.CurrencyCode,
		CurrencySymbol: req.CurrencySymbol,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Organization created successfully", org)
}

// ListMine lists the organizations the caller belongs to
func (h *OrganizationHandler) ListMine(c *gin.Context) {
	orgs, err := h.organizationService.ListMine(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Organizations retrieved successfully", orgs)
}

// GetCurrent returns the organization selected by the X-Organization-ID header
func (h *OrganizationHandler) GetCurrent(c *gin.Context) {
	org, err := h.organizationService.GetCurrent(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Organization retrieved successfully", org)
}

// AddMember adds a user to the current organization
func (h *OrganizationHandler) AddMember(c *gin.Context) {
	var req request.AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	member, err := h.organizationService.AddMember(c.Request.Context(), &service.AddMemberInput{
		UserID: req.UserID,
		Email:  req.Email,
		Role:   enum.MemberRole(req.Role),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Member added successfully", member)
}
