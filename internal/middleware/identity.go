package middleware

// identity.go defines the authenticated identity attached to the request
// context by JWTAuth and read by the role/permission guards and handlers.
// The role and permission sets are the snapshot embedded in the token at
// login; they are not refreshed against live storage per request.

import "github.com/labstack/echo/v4"

// identityKey is the context key under which JWTAuth stores the Identity.
const identityKey = "identity"

// Identity is the authenticated caller extracted from a verified access
// token.
type Identity struct {
    UserID      string   // token subject
    Username    string   // username claim
    Roles       []string // role-name snapshot from the token
    Permissions []string // permission closure snapshot from the token
}

// HasAnyRole reports whether the identity holds at least one of the
// given role names.
func (id Identity) HasAnyRole(names ...string) bool {
    for _, want := range names {
        for _, have := range id.Roles {
            if have == want {
                return true
            }
        }
    }
    return false
}

// HasAnyPermission reports whether the identity's permission set
// intersects the given permission names.
func (id Identity) HasAnyPermission(names ...string) bool {
    for _, want := range names {
        for _, have := range id.Permissions {
            if have == want {
                return true
            }
        }
    }
    return false
}

// IdentityFrom retrieves the Identity stored by JWTAuth, if any.
func IdentityFrom(c echo.Context) (Identity, bool) {
    v := c.Get(identityKey)
    id, ok := v.(Identity)
    return id, ok
}
