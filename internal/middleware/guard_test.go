package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/document-gateway/internal/utils"
)

const testSecret = "guard-test-secret"

// invoke runs a request through the given middleware chain ending in a
// handler that answers 200.
func invoke(t *testing.T, header string, mws ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

func bearer(t *testing.T, roles, permissions []string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, "user-1", "alice", roles, permissions, 15)
	if err != nil {
		t.Fatalf("NewAccessToken error: %v", err)
	}
	return "Bearer " + tok.Token
}

func TestJWTAuthRejectsMissingToken(t *testing.T) {
	rec := invoke(t, "", JWTAuth(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsGarbageToken(t *testing.T) {
	rec := invoke(t, "Bearer not-a-jwt", JWTAuth(testSecret))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401", rec.Code)
	}
}

func TestJWTAuthRejectsBeforeRoleCheckRuns(t *testing.T) {
	// A bad token must answer 401 even when a role guard follows; the
	// authentication check runs first.
	rec := invoke(t, "Bearer junk", JWTAuth(testSecret), RequireRole("admin"))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("code = %d, want 401 from the auth check", rec.Code)
	}
}

func TestNoRequirementsAlwaysPass(t *testing.T) {
	// An authenticated identity with no declared requirements passes.
	rec := invoke(t, bearer(t, nil, nil), JWTAuth(testSecret), RequireRole(), RequirePermission())
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200", rec.Code)
	}
}

func TestRequireRoleAnyOf(t *testing.T) {
	cases := []struct {
		name     string
		roles    []string
		required []string
		want     int
	}{
		{"holds one of two", []string{"editor"}, []string{"admin", "editor"}, http.StatusOK},
		{"holds none", []string{"viewer"}, []string{"admin", "editor"}, http.StatusForbidden},
		{"no roles at all", nil, []string{"admin"}, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := invoke(t, bearer(t, tc.roles, nil), JWTAuth(testSecret), RequireRole(tc.required...))
			if rec.Code != tc.want {
				t.Fatalf("code = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequirePermissionIndependentOfRoles(t *testing.T) {
	// Permission evaluation only looks at the permission snapshot; the
	// role set is irrelevant.
	rec := invoke(t, bearer(t, []string{"admin"}, nil), JWTAuth(testSecret), RequirePermission("x"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("code = %d, want 403 despite the admin role", rec.Code)
	}
	rec = invoke(t, bearer(t, nil, []string{"x"}), JWTAuth(testSecret), RequirePermission("x"))
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d, want 200 with permission present", rec.Code)
	}
}

func TestGuardsComposeByAnd(t *testing.T) {
	chain := func(header string) *httptest.ResponseRecorder {
		return invoke(t, header, JWTAuth(testSecret), RequireRole("editor"), RequirePermission("document:create"))
	}
	if rec := chain(bearer(t, []string{"editor"}, []string{"document:create"})); rec.Code != http.StatusOK {
		t.Fatalf("both checks should pass, got %d", rec.Code)
	}
	if rec := chain(bearer(t, []string{"editor"}, nil)); rec.Code != http.StatusForbidden {
		t.Fatalf("role alone should not pass the permission check, got %d", rec.Code)
	}
	if rec := chain(bearer(t, nil, []string{"document:create"})); rec.Code != http.StatusForbidden {
		t.Fatalf("permission alone should not pass the role check, got %d", rec.Code)
	}
}

func TestIdentityFromContext(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, []string{"viewer"}, []string{"document:read"}))
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got Identity
	h := JWTAuth(testSecret)(func(c echo.Context) error {
		id, ok := IdentityFrom(c)
		if !ok {
			t.Fatalf("identity missing after JWTAuth")
		}
		got = id
		return c.NoContent(http.StatusOK)
	})
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.UserID != "user-1" || got.Username != "alice" {
		t.Fatalf("identity = %+v", got)
	}
	if !got.HasAnyRole("viewer") || got.HasAnyRole("admin") {
		t.Fatalf("role set mismatch: %+v", got.Roles)
	}
	if !got.HasAnyPermission("document:read") || got.HasAnyPermission("document:delete") {
		t.Fatalf("permission set mismatch: %+v", got.Permissions)
	}
}
