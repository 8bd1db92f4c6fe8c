package handler

import (
    "context"  // provides context with cancellation for DB calls
    "net/http" // HTTP status codes and primitives
    "strings"  // string manipulation utilities
    "time"     // timeouts for DB calls

    "github.com/google/uuid"      // user id validation
    "github.com/labstack/echo/v4" // Echo framework for HTTP routing

    "github.com/iliyamo/document-gateway/internal/config"     // app configuration
    "github.com/iliyamo/document-gateway/internal/middleware" // authenticated identity
    "github.com/iliyamo/document-gateway/internal/model"      // entity structs
    "github.com/iliyamo/document-gateway/internal/repository" // sentinel errors / closure
    "github.com/iliyamo/document-gateway/internal/utils"      // hashing and token issuing
)

// UserStore is the slice of the user repository the auth and users
// handlers depend on.  *repository.UserRepo satisfies it; tests supply
// in-memory fakes.
type UserStore interface {
	Create(ctx context.Context, username, email, password string, cost int) (string, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// RoleStore is the slice of the role/permission graph the handlers use.
type RoleStore interface {
	Ensure(ctx context.Context, name string) (model.Role, error)
	AssignRole(ctx context.Context, userID string, roleID uint64) error
	ReplaceUserRoles(ctx context.Context, userID string, roleNames []string) error
	RolesWithPermissions(ctx context.Context, userID string) ([]repository.RoleWithPermissions, error)
}

// TokenStore persists refresh token rows for logout bookkeeping.
type TokenStore interface {
	Store(ctx context.Context, userID, tokenHash string, exp time.Time) error
	DeleteAllForUser(ctx context.Context, userID string) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Roles  RoleStore
	Tokens TokenStore
}

func NewAuthHandler(cfg config.Config, u UserStore, r RoleStore, t TokenStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Roles: r, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register: create the user and assign the default viewer role.  The
// existence check is the insert itself; a concurrent duplicate loses at
// the unique constraint and surfaces the same conflict.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Username, req.Email, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrUserExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username or email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	// Default role assignment; a missing viewer role row is created, never
	// surfaced as an error.
	role, err := h.Roles.Ensure(ctx, "viewer")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign role failed"})
	}
	if err := h.Roles.AssignRole(ctx, uid, role.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "assign role failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "Registration successful"})
}

// Login: verify credentials, materialize the permission closure and
// return a signed access token embedding the snapshot.  A refresh token
// row is stored so logout has sessions to invalidate.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	// VerifyPassword folds hash-verify failures into a plain mismatch, so
	// a hashing-host failure answers the same 401 as a wrong password.
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	roles, err := h.Roles.RolesWithPermissions(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	permissions := repository.PermissionClosure(roles)
	roleNames := repository.RoleNames(roles)

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Username, roleNames, permissions, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	if err := h.Tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save refresh failed"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"accessToken":  access.Token,
		"refreshToken": refresh.Raw, // raw back to client; only the hash is stored
	})
}

// Logout: delete every refresh token row owned by the authenticated
// user.  Deleting zero rows is still success.
func (h *AuthHandler) Logout(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if _, err := uuid.Parse(id.UserID); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid user id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tokens.DeleteAllForUser(ctx, id.UserID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me: echo back the identity snapshot carried by the token.
func (h *AuthHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"userId":      id.UserID,
		"username":    id.Username,
		"roles":       id.Roles,
		"permissions": id.Permissions,
	})
}
