package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/receiptly/receiptly-api/internal/domain/enum"
	"github.com/receiptly/receiptly-api/internal/domain/repository"
	infraRepo "github.com/receiptly/receiptly-api/internal/infrastructure/repository"
	"github.com/receiptly/receiptly-api/internal/presentation/http/dto/response"
)

// OrganizationHeader selects the organization a request acts on
const OrganizationHeader = "X-Organization-ID"

// OrganizationMiddleware resolves the organization from the X-Organization-ID
// header and checks that the authenticated user is a member of it.
func OrganizationMiddleware(orgRepo repository.OrganizationRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(OrganizationHeader)
		if header == "" {
			response.BadRequest(c, "X-Organization-ID header is required")
			c.Abort()
			return
		}

		orgID, err := uuid.Parse(header)
		if err != nil {
			response.BadRequest(c, "Invalid X-Organization-ID header")
			c.Abort()
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			response.Unauthorized(c, "User not authenticated")
			c.Abort()
			return
		}

		membership, err := orgRepo.GetMembership(c.Request.Context(), orgID, userID)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		// non-members get the same answer as for an unknown organization
		if membership == nil {
			response.Forbidden(c, "Access denied to this organization")
			c.Abort()
			return
		}

		c.Set("organization_id", orgID)
		c.Set("member_role", membership.Role)

		ctx := infraRepo.WithOrganization(c.Request.Context(), orgID)
		ctx = infraRepo.WithMemberRole(ctx, string(membership.Role))
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RequireRole rejects members whose role is not one of roles
func RequireRole(roles ...enum.MemberRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := c.Get("member_role")
		if !ok {
			response.Forbidden(c, "Access denied")
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		response.Forbidden(c, "Insufficient role privileges")
		c.Abort()
	}
}

// GetOrganizationID retrieves the organization ID from gin context
func GetOrganizationID(c *gin.Context) uuid.UUID {
	orgID, exists := c.Get("organization_id")
	if !exists {
		return uuid.Nil
	}
	id, ok := orgID.(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return id
}
