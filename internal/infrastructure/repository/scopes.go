package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ctxKey string

const (
	// OrganizationIDKey is the context key for the active organization
	OrganizationIDKey ctxKey = "organization_id"
	// UserIDKey is the context key for the identity provider subject
	UserIDKey ctxKey = "user_id"
	// MemberRoleKey is the context key for the caller's role in the active organization
	MemberRoleKey ctxKey = "member_role"
)

// OrganizationScope returns a GORM scope that filters by organization.
// Every query on an organization-owned table goes through it.
func OrganizationScope(orgID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if orgID == uuid.Nil {
			// Fail-safe: no organization means no rows
			return db.Where("1 = 0")
		}
		return db.Where("organization_id = ?", orgID)
	}
}

// WithOrganization adds the organization ID to context
func WithOrganization(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, OrganizationIDKey, orgID)
}

// GetOrganizationID extracts the organization ID from context
func GetOrganizationID(ctx context.Context) (uuid.UUID, bool) {
	orgID, ok := ctx.Value(OrganizationIDKey).(uuid.UUID)
	return orgID, ok && orgID != uuid.Nil
}

// WithUser adds the authenticated subject to context
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the authenticated subject from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok && userID != ""
}

// WithMemberRole adds the caller's organization role to context
func WithMemberRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, MemberRoleKey, role)
}

// GetMemberRole extracts the caller's organization role from context
func GetMemberRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(MemberRoleKey).(string)
	return role, ok
}
