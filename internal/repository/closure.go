package repository

// PermissionClosure computes the materialized permission set for a user
// from the roles they hold: the union of permission names reachable via
// every role, de-duplicated by name.  One permission reachable through
// several roles appears once, at the position of its first discovery.
// Roles do not inherit from other roles, so traversal is a single hop.
func PermissionClosure(roles []RoleWithPermissions) []string {
	seen := make(map[string]struct{})
	closure := make([]string, 0)
	for _, rw := range roles {
		for _, p := range rw.Permissions {
			if p.Name == "" {
				continue
			}
			if _, ok := seen[p.Name]; ok {
				continue
			}
			seen[p.Name] = struct{}{}
			closure = append(closure, p.Name)
		}
	}
	return closure
}

// RoleNames flattens the role list into the name slice embedded in the
// session token payload.
func RoleNames(roles []RoleWithPermissions) []string {
	names := make([]string, 0, len(roles))
	for _, rw := range roles {
		names = append(names, rw.Role.Name)
	}
	return names
}
