package models

// OrganizationRole is the permission level a member holds inside one
// organization. Roles form a total order: MEMBER < SUBADMIN < ADMIN.
type OrganizationRole string

const (
	RoleMember   OrganizationRole = "MEMBER"
	RoleSubadmin OrganizationRole = "SUBADMIN"
	RoleAdmin    OrganizationRole = "ADMIN"
)

var roleRank = map[OrganizationRole]int{
	RoleMember:   1,
	RoleSubadmin: 2,
	RoleAdmin:    3,
}

// Valid reports whether the role is one of the known values.
func (r OrganizationRole) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role grants at least the permissions of
// other. Unknown roles grant nothing.
func (r OrganizationRole) AtLeast(other OrganizationRole) bool {
	rank, ok := roleRank[r]
	if !ok {
		return false
	}
	return rank >= roleRank[other]
}
