package models

// Role is the four-tier authorization level of a user
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleMember     Role = "member"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

var roleRank = map[Role]int{
	RoleViewer:     1,
	RoleMember:     2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// Rank returns the position of the role in the hierarchy, 0 for unknown roles
func (r Role) Rank() int {
	return roleRank[r]
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether r grants everything min grants
func (r Role) AtLeast(min Role) bool {
	return r.Valid() && r.Rank() >= min.Rank()
}

// IsStaff reports admin or super_admin
func (r Role) IsStaff() bool {
	return r.AtLeast(RoleAdmin)
}
