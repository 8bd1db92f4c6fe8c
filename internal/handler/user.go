package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/document-gateway/internal/middleware"
	"github.com/iliyamo/document-gateway/internal/repository"
)

// UsersHandler serves the user administration endpoints.
type UsersHandler struct {
	Users UserStore
	Roles RoleStore
}

func NewUsersHandler(u UserStore, r RoleStore) *UsersHandler {
	return &UsersHandler{Users: u, Roles: r}
}

// ----- DTOs -----

type roleDetail struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}
type userResp struct {
	ID       string       `json:"id"`
	Username string       `json:"username"`
	Email    string       `json:"email"`
	Roles    []roleDetail `json:"roles"`
}
type updateRoleReq struct {
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
}

// userWithRoles loads one user's role and permission detail for responses.
func (h *UsersHandler) userWithRoles(ctx context.Context, id, username, email string) (userResp, error) {
	roles, err := h.Roles.RolesWithPermissions(ctx, id)
	if err != nil {
		return userResp{}, err
	}
	resp := userResp{ID: id, Username: username, Email: email, Roles: make([]roleDetail, 0, len(roles))}
	for _, rw := range roles {
		d := roleDetail{Name: rw.Role.Name, Permissions: make([]string, 0, len(rw.Permissions))}
		for _, p := range rw.Permissions {
			d.Permissions = append(d.Permissions, p.Name)
		}
		resp.Roles = append(resp.Roles, d)
	}
	return resp, nil
}

// List handles GET /users: every user with their role and permission
// detail.  Guarded by the admin role and the user:read permission.
func (h *UsersHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		resp, err := h.userWithRoles(ctx, u.ID, u.Username, u.Email)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
		}
		out = append(out, resp)
	}
	return c.JSON(http.StatusOK, out)
}

// UpdateRole handles PATCH /users/role: replace the target user's role
// set with the named roles, creating unknown role rows on the fly.  The
// caller's own token keeps its old snapshot; the target sees the change
// after re-login.
func (h *UsersHandler) UpdateRole(c echo.Context) error {
	var req updateRoleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if _, err := uuid.Parse(req.UserID); err != nil || req.Roles == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "userId and roles required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.GetByID(ctx, req.UserID); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if err := h.Roles.ReplaceUserRoles(ctx, req.UserID, req.Roles); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update roles failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Roles updated"})
}

// Me handles GET /users/me: the caller's stored profile with live role
// detail (unlike /auth/me, which echoes the token snapshot).
func (h *UsersHandler) Me(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id.UserID)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	resp, err := h.userWithRoles(ctx, u.ID, u.Username, u.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load roles failed"})
	}
	return c.JSON(http.StatusOK, resp)
}
