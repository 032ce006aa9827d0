package enum

// MemberRole is a user's role inside an organization
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
)

// CanManageSettings reports whether the role may change organization settings.
func (r MemberRole) CanManageSettings() bool {
	return r == MemberRoleOwner || r == MemberRoleAdmin
}
