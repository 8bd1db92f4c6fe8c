package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireRole returns a middleware that enforces that the authenticated
// identity holds at least one of the given role names (any-of within the
// list).  Guards compose by AND: registering RequireRole together with
// RequirePermission means both must pass.  With an empty list the guard
// passes unconditionally; callers express "no role requirement" by not
// registering it at all, and the route table does exactly that.  A missing
// identity (JWTAuth not run or not passed) is treated as holding no roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if len(roles) == 0 {
                return next(c)
            }
            id, ok := IdentityFrom(c)
            if !ok || !id.HasAnyRole(roles...) {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
            }
            return next(c)
        }
    }
}
