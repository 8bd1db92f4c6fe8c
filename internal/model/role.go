package model

// Role represents a row in the `roles` table.  A role is a named
// bundle of permissions assignable to users; users may hold many
// roles and a role may be held by many users via the `user_roles`
// join table.
//
// Fields:
//  ID   – numeric identifier of the role.
//  Name – unique role name (e.g. admin, editor, viewer).
type Role struct {
    ID   uint64 // roles.id
    Name string // roles.name
}

// Permission represents a row in the `permissions` table.  A
// permission is a named atomic capability (e.g. "document:read")
// checked per endpoint by the authorization middleware.
//
// Fields:
//  ID   – numeric identifier of the permission.
//  Name – unique permission name.
type Permission struct {
    ID   uint64 // permissions.id
    Name string // permissions.name
}

// UserRole links a user to a role in the `user_roles` join table.
// Deleting either side cascades the link away.
//
// Fields:
//  ID     – primary key identifier.
//  UserID – user holding the role.
//  RoleID – role being held.
type UserRole struct {
    ID     uint64 // user_roles.id
    UserID string // user_roles.user_id
    RoleID uint64 // user_roles.role_id
}

// RolePermission links a role to a permission in the
// `role_permissions` join table.  Deleting either side cascades.
//
// Fields:
//  ID           – primary key identifier.
//  RoleID       – role granting the permission.
//  PermissionID – permission granted.
type RolePermission struct {
    ID           uint64 // role_permissions.id
    RoleID       uint64 // role_permissions.role_id
    PermissionID uint64 // role_permissions.permission_id
}
