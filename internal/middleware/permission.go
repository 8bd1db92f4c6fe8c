package middleware

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// RequirePermission returns a middleware that enforces that the
// authenticated identity's permission snapshot intersects the given
// permission names (any-of within the list).  The snapshot is whatever
// the token carried at login, so a permission granted after login only
// takes effect once the user re-authenticates.  An empty list passes
// unconditionally; a missing identity holds no permissions.
func RequirePermission(permissions ...string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if len(permissions) == 0 {
                return next(c)
            }
            id, ok := IdentityFrom(c)
            if !ok || !id.HasAnyPermission(permissions...) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
