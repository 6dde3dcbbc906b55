package models

// Role is the application-level role of a user. It is derived exactly once,
// at the allow-list gate, from the is_admin flag on the allow-list entry and
// never re-derived downstream.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleTenant Role = "tenant"
)

// RoleFromAdminFlag converts the allow-list boolean admin column into a Role.
func RoleFromAdminFlag(isAdmin bool) Role {
	if isAdmin {
		return RoleAdmin
	}
	return RoleTenant
}

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleTenant
}
