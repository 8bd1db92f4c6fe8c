package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/document-gateway/internal/model"
)

// RoleWithPermissions pairs a role with every permission reachable
// through its role_permissions links.  The repository returns one entry
// per role a user holds; the closure over all entries is computed by
// PermissionClosure.
type RoleWithPermissions struct {
	Role        model.Role
	Permissions []model.Permission
}

// RoleRepo owns the role/permission graph: roles, permissions and the
// two join tables linking them to users and to each other.
type RoleRepo struct{ DB *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{DB: db} }

// FindByName fetches a role by its unique name.  ErrNotFound when absent.
func (r *RoleRepo) FindByName(ctx context.Context, name string) (model.Role, error) {
	var role model.Role
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,name FROM roles WHERE name=? LIMIT 1", name).Scan(&role.ID, &role.Name)
	if err == sql.ErrNoRows {
		return model.Role{}, ErrNotFound
	}
	return role, err
}

// Ensure returns the role with the given name, creating it first if it
// does not exist.  "Role not found" is never surfaced to callers; the
// auth flow recovers by creating the row.
func (r *RoleRepo) Ensure(ctx context.Context, name string) (model.Role, error) {
	name = strings.TrimSpace(name)
	role, err := r.FindByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if err != ErrNotFound {
		return model.Role{}, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO roles (name) VALUES (?) ON DUPLICATE KEY UPDATE id=LAST_INSERT_ID(id)", name)
	if err != nil {
		return model.Role{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Role{}, err
	}
	return model.Role{ID: uint64(id), Name: name}, nil
}

// AssignRole links a user to a role.  Re-assigning an already held role
// is a no-op.
func (r *RoleRepo) AssignRole(ctx context.Context, userID string, roleID uint64) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO user_roles (user_id, role_id) VALUES (?,?) ON DUPLICATE KEY UPDATE user_id=user_id",
		userID, roleID)
	return err
}

// ReplaceUserRoles removes every role the user currently holds and
// assigns the named roles instead, creating unknown role rows on the fly.
func (r *RoleRepo) ReplaceUserRoles(ctx context.Context, userID string, roleNames []string) error {
	if _, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_roles WHERE user_id=?", userID); err != nil {
		return err
	}
	for _, name := range roleNames {
		role, err := r.Ensure(ctx, name)
		if err != nil {
			return err
		}
		if err := r.AssignRole(ctx, userID, role.ID); err != nil {
			return err
		}
	}
	return nil
}

// RolesWithPermissions loads every role the user holds together with the
// permissions each role grants.  Roles without permissions still appear
// with an empty permission list.  Row order follows the assignment order
// of the role links so the closure's first-discovery order is stable.
func (r *RoleRepo) RolesWithPermissions(ctx context.Context, userID string) ([]RoleWithPermissions, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT r.id, r.name, p.id, p.name
		   FROM user_roles ur
		   JOIN roles r ON r.id = ur.role_id
		   LEFT JOIN role_permissions rp ON rp.role_id = r.id
		   LEFT JOIN permissions p ON p.id = rp.permission_id
		  WHERE ur.user_id = ?
		  ORDER BY ur.id, rp.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		result []RoleWithPermissions
		index  = map[uint64]int{} // role id -> position in result
	)
	for rows.Next() {
		var (
			roleID   uint64
			roleName string
			permID   sql.NullInt64
			permName sql.NullString
		)
		if err := rows.Scan(&roleID, &roleName, &permID, &permName); err != nil {
			return nil, err
		}
		pos, ok := index[roleID]
		if !ok {
			pos = len(result)
			index[roleID] = pos
			result = append(result, RoleWithPermissions{Role: model.Role{ID: roleID, Name: roleName}})
		}
		if permID.Valid {
			result[pos].Permissions = append(result[pos].Permissions, model.Permission{
				ID:   uint64(permID.Int64),
				Name: permName.String,
			})
		}
	}
	return result, rows.Err()
}
