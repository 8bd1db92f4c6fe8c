package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"

	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/document-gateway/internal/handler"    // handlers implementing the endpoints
	"github.com/iliyamo/document-gateway/internal/middleware" // JWT, role and permission guards
)

// Route declares one endpoint together with its authorization
// requirements.  The guard pipeline is assembled from this struct at
// registration time: authentication first, then the role check, then
// the permission check.  Within either list the requirement is any-of;
// across the checks all must pass.  A nil list means the check is not
// registered at all and passes by construction.
type Route struct {
	Method        string
	Path          string
	Handler       echo.HandlerFunc
	Authenticated bool     // require a valid access token
	Roles         []string // any-of role requirement, implies Authenticated
	Permissions   []string // any-of permission requirement, implies Authenticated
	Extra         []echo.MiddlewareFunc // endpoint-specific middleware (cache, rate limit); runs inside the guards
}

// Handlers groups the handler sets the route table is built from.
type Handlers struct {
	Auth      *handler.AuthHandler
	Users     *handler.UsersHandler
	Documents *handler.DocumentsHandler
	Ingestion *handler.IngestionHandler
}

// Routes builds the full endpoint table.  This is the single place the
// role/permission matrix lives; the guards read it via plain struct
// fields, not reflection.  rateLimit is applied to the credential
// endpoints, cache to the read-only listings.
func Routes(h Handlers, rateLimit, cache echo.MiddlewareFunc) []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/healthz", Handler: handler.Health},

		// auth
		{Method: http.MethodPost, Path: "/auth/register", Handler: h.Auth.Register, Extra: []echo.MiddlewareFunc{rateLimit}},
		{Method: http.MethodPost, Path: "/auth/login", Handler: h.Auth.Login, Extra: []echo.MiddlewareFunc{rateLimit}},
		{Method: http.MethodPost, Path: "/auth/logout", Handler: h.Auth.Logout, Authenticated: true},
		{Method: http.MethodGet, Path: "/auth/me", Handler: h.Auth.Me, Authenticated: true},

		// users
		{Method: http.MethodGet, Path: "/users", Handler: h.Users.List, Roles: []string{"admin"}, Permissions: []string{"user:read"}},
		{Method: http.MethodPatch, Path: "/users/role", Handler: h.Users.UpdateRole, Roles: []string{"admin"}, Permissions: []string{"user:updateRole"}},
		{Method: http.MethodGet, Path: "/users/me", Handler: h.Users.Me, Authenticated: true},

		// documents
		{Method: http.MethodGet, Path: "/documents", Handler: h.Documents.List, Permissions: []string{"document:read"}, Extra: []echo.MiddlewareFunc{cache}},
		{Method: http.MethodGet, Path: "/documents/:id", Handler: h.Documents.Get, Permissions: []string{"document:read"}},
		{Method: http.MethodPost, Path: "/documents", Handler: h.Documents.Create, Roles: []string{"admin", "editor"}, Permissions: []string{"document:create"}},
		{Method: http.MethodPatch, Path: "/documents/:id", Handler: h.Documents.Update, Roles: []string{"admin", "editor"}, Permissions: []string{"document:update"}},
		{Method: http.MethodDelete, Path: "/documents/:id", Handler: h.Documents.Delete, Roles: []string{"admin", "editor"}, Permissions: []string{"document:delete"}},

		// ingestion
		{Method: http.MethodPost, Path: "/ingestion/trigger", Handler: h.Ingestion.Trigger, Roles: []string{"admin", "editor"}, Permissions: []string{"ingestion:trigger"}},
		{Method: http.MethodGet, Path: "/ingestion", Handler: h.Ingestion.List, Permissions: []string{"ingestion:list"}},
		{Method: http.MethodGet, Path: "/ingestion/:id", Handler: h.Ingestion.Status, Permissions: []string{"ingestion:status"}},
		{Method: http.MethodGet, Path: "/ingestion/:id/embeddings", Handler: h.Ingestion.Embeddings, Permissions: []string{"ingestion:embeddings"}},
	}
}

// Register wires the route table onto the Echo instance, assembling the
// guard chain each route declares.  Guards are outermost: Extra
// middleware (which may short-circuit, like the response cache) only
// runs once authentication and authorization have passed.
func Register(e *echo.Echo, routes []Route, jwtSecret string) {
	for _, r := range routes {
		var mws []echo.MiddlewareFunc
		if r.Authenticated || len(r.Roles) > 0 || len(r.Permissions) > 0 {
			mws = append(mws, middleware.JWTAuth(jwtSecret))
		}
		if len(r.Roles) > 0 {
			mws = append(mws, middleware.RequireRole(r.Roles...))
		}
		if len(r.Permissions) > 0 {
			mws = append(mws, middleware.RequirePermission(r.Permissions...))
		}
		for _, m := range r.Extra {
			if m != nil {
				mws = append(mws, m)
			}
		}
		e.Add(r.Method, r.Path, r.Handler, mws...)
	}
}
