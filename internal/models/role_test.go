package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrganizationRole_AtLeast(t *testing.T) {
	tests := []struct {
		name  string
		role  OrganizationRole
		other OrganizationRole
		want  bool
	}{
		{"admin at least admin", RoleAdmin, RoleAdmin, true},
		{"admin at least subadmin", RoleAdmin, RoleSubadmin, true},
		{"admin at least member", RoleAdmin, RoleMember, true},
		{"subadmin not at least admin", RoleSubadmin, RoleAdmin, false},
		{"subadmin at least subadmin", RoleSubadmin, RoleSubadmin, true},
		{"subadmin at least member", RoleSubadmin, RoleMember, true},
		{"member not at least admin", RoleMember, RoleAdmin, false},
		{"member not at least subadmin", RoleMember, RoleSubadmin, false},
		{"member at least member", RoleMember, RoleMember, true},
		{"unknown role grants nothing", OrganizationRole("OWNER"), RoleMember, false},
		{"empty role grants nothing", OrganizationRole(""), RoleMember, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.role.AtLeast(tt.other))
		})
	}
}

func TestOrganizationRole_Valid(t *testing.T) {
	require.True(t, RoleMember.Valid())
	require.True(t, RoleSubadmin.Valid())
	require.True(t, RoleAdmin.Valid())
	require.False(t, OrganizationRole("OWNER").Valid())
	require.False(t, OrganizationRole("admin").Valid())
	require.False(t, OrganizationRole("").Valid())
}
