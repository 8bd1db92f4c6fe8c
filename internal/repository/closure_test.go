package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/document-gateway/internal/model"
)

func role(id uint64, name string, perms ...string) RoleWithPermissions {
	rw := RoleWithPermissions{Role: model.Role{ID: id, Name: name}}
	for i, p := range perms {
		rw.Permissions = append(rw.Permissions, model.Permission{ID: id*100 + uint64(i), Name: p})
	}
	return rw
}

func TestPermissionClosureUnion(t *testing.T) {
	roles := []RoleWithPermissions{
		role(1, "editor", "document:read", "document:create"),
		role(2, "viewer", "document:read", "ingestion:status"),
	}
	got := PermissionClosure(roles)
	assert.Equal(t, []string{"document:read", "document:create", "ingestion:status"}, got,
		"duplicates collapse by name at first discovery")
}

func TestPermissionClosureOrderIndependentAsSet(t *testing.T) {
	a := []RoleWithPermissions{
		role(1, "editor", "document:read", "document:create"),
		role(2, "viewer", "ingestion:list"),
	}
	b := []RoleWithPermissions{a[1], a[0]}

	setOf := func(names []string) map[string]bool {
		m := map[string]bool{}
		for _, n := range names {
			m[n] = true
		}
		return m
	}
	assert.Equal(t, setOf(PermissionClosure(a)), setOf(PermissionClosure(b)),
		"closure is the same set regardless of traversal order")
}

func TestPermissionClosureEmptyAndDuplicateEntities(t *testing.T) {
	assert.Empty(t, PermissionClosure(nil))
	assert.Empty(t, PermissionClosure([]RoleWithPermissions{role(1, "viewer")}))

	// Uniqueness is by name, not entity identity: the same name under
	// two different permission ids still collapses.
	roles := []RoleWithPermissions{
		{Role: model.Role{ID: 1, Name: "a"}, Permissions: []model.Permission{{ID: 10, Name: "x"}}},
		{Role: model.Role{ID: 2, Name: "b"}, Permissions: []model.Permission{{ID: 20, Name: "x"}}},
	}
	assert.Equal(t, []string{"x"}, PermissionClosure(roles))
}

func TestRoleNames(t *testing.T) {
	roles := []RoleWithPermissions{role(1, "admin"), role(2, "viewer")}
	assert.Equal(t, []string{"admin", "viewer"}, RoleNames(roles))
}
