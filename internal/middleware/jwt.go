package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/iliyamo/document-gateway/internal/utils" // token parsing helpers
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the caller's Identity into the request context.  The provided
// secret must match the one used when issuing tokens.  This runs before any
// role or permission guard: an absent, malformed or expired token rejects
// the request with 401 before other checks are evaluated.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            // Read the Authorization header.  A valid header starts with
            // "Bearer " followed by the JWT.
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := utils.ParseAccessToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            // The role and permission lists are the closure snapshot taken
            // at login; downstream guards evaluate against this snapshot
            // rather than re-querying storage.
            c.Set(identityKey, Identity{
                UserID:      claims.Subject,
                Username:    claims.Username,
                Roles:       claims.Roles,
                Permissions: claims.Permissions,
            })
            return next(c)
        }
    }
}
