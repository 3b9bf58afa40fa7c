package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	assert.True(t, RoleStaff.IsValid())
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleSuperadmin.IsValid())
	assert.False(t, Role("owner").IsValid())
	assert.False(t, Role("").IsValid())
}

func TestRole_Ladder(t *testing.T) {
	assert.False(t, RoleStaff.IsAdmin())
	assert.False(t, RoleStaff.IsSuperadmin())

	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleAdmin.IsSuperadmin())

	assert.True(t, RoleSuperadmin.IsAdmin())
	assert.True(t, RoleSuperadmin.IsSuperadmin())
}

func TestRole_UnknownRoleRanksBelowEverything(t *testing.T) {
	unknown := Role("contractor")
	assert.False(t, unknown.IsAdmin())
	assert.False(t, unknown.IsSuperadmin())
}

func TestAllRoles(t *testing.T) {
	assert.Equal(t, []Role{RoleStaff, RoleAdmin, RoleSuperadmin}, AllRoles())
}

func TestUser_Sanitize(t *testing.T) {
	u := &User{ID: 1, Username: "jdoe", PasswordHash: "$2a$hash"}
	u.Sanitize()
	assert.Empty(t, u.PasswordHash)
	assert.Equal(t, "jdoe", u.Username)
}
