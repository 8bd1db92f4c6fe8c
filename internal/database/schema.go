package database

// schema.go applies the gateway's DDL and seeds the role/permission matrix.
// Statements use IF NOT EXISTS / ON DUPLICATE KEY so both functions are safe
// to run on every startup.

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/iliyamo/document-gateway/internal/utils"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            CHAR(36)     NOT NULL,
		username      VARCHAR(64)  NOT NULL,
		email         VARCHAR(191) NOT NULL,
		password_hash VARCHAR(100) NOT NULL,
		created_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_username (username),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS roles (
		id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(64)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_roles_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS permissions (
		id   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		name VARCHAR(64)     NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_permissions_name (name)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_roles (
		id      BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id CHAR(36)        NOT NULL,
		role_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_user_roles (user_id, role_id),
		CONSTRAINT fk_user_roles_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
		CONSTRAINT fk_user_roles_role FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS role_permissions (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		role_id       BIGINT UNSIGNED NOT NULL,
		permission_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_role_permissions (role_id, permission_id),
		CONSTRAINT fk_role_permissions_role FOREIGN KEY (role_id) REFERENCES roles (id) ON DELETE CASCADE,
		CONSTRAINT fk_role_permissions_perm FOREIGN KEY (permission_id) REFERENCES permissions (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id    CHAR(36)        NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at DATETIME        NOT NULL,
		created_at DATETIME        NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY ix_refresh_tokens_user (user_id),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS documents (
		id          CHAR(36)     NOT NULL,
		title       VARCHAR(191) NOT NULL,
		description TEXT         NULL,
		file_path   VARCHAR(255) NOT NULL,
		owner_id    CHAR(36)     NOT NULL,
		created_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY ix_documents_owner (owner_id),
		CONSTRAINT fk_documents_owner FOREIGN KEY (owner_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS ingestions (
		id          CHAR(36)    NOT NULL,
		status      VARCHAR(16) NOT NULL,
		document_id CHAR(36)    NULL,
		started_at  DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at  DATETIME    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		PRIMARY KEY (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the DDL statements in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// permissionNames is the full capability set checked by the route table.
var permissionNames = []string{
	"user:read",
	"user:updateRole",
	"document:read",
	"document:create",
	"document:update",
	"document:delete",
	"ingestion:trigger",
	"ingestion:status",
	"ingestion:embeddings",
	"ingestion:list",
}

// rolePermissions maps each seeded role to the permissions it grants.
var rolePermissions = map[string][]string{
	"admin": permissionNames,
	"editor": {
		"document:read", "document:create", "document:update",
		"ingestion:trigger", "ingestion:status", "ingestion:embeddings", "ingestion:list",
	},
	"viewer": {"document:read", "ingestion:status", "ingestion:list"},
}

// Seed inserts the permission catalogue, the admin/editor/viewer roles, their
// grants, and a bootstrap admin account (admin/admin123) if one does not
// already exist.  Every step is idempotent.
func Seed(ctx context.Context, db *sql.DB, bcryptCost int) error {
	for _, name := range permissionNames {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO permissions (name) VALUES (?) ON DUPLICATE KEY UPDATE name=name", name); err != nil {
			return fmt.Errorf("seed permission %s: %w", name, err)
		}
	}
	for role := range rolePermissions {
		if _, err := db.ExecContext(ctx,
			"INSERT INTO roles (name) VALUES (?) ON DUPLICATE KEY UPDATE name=name", role); err != nil {
			return fmt.Errorf("seed role %s: %w", role, err)
		}
	}
	for role, perms := range rolePermissions {
		for _, perm := range perms {
			if _, err := db.ExecContext(ctx,
				`INSERT INTO role_permissions (role_id, permission_id)
				 SELECT r.id, p.id FROM roles r, permissions p WHERE r.name=? AND p.name=?
				 ON DUPLICATE KEY UPDATE role_id=role_id`, role, perm); err != nil {
				return fmt.Errorf("seed grant %s -> %s: %w", role, perm, err)
			}
		}
	}

	// Bootstrap admin account.
	var adminID string
	err := db.QueryRowContext(ctx, "SELECT id FROM users WHERE username=? LIMIT 1", "admin").Scan(&adminID)
	switch {
	case err == sql.ErrNoRows:
		hash, err := utils.HashPassword("admin123", bcryptCost)
		if err != nil {
			return fmt.Errorf("seed admin hash: %w", err)
		}
		adminID = uuid.NewString()
		if _, err := db.ExecContext(ctx,
			"INSERT INTO users (id, username, email, password_hash) VALUES (?,?,?,?)",
			adminID, "admin", "admin@example.com", hash); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
		log.Println("seeded bootstrap admin user")
	case err != nil:
		return fmt.Errorf("seed admin lookup: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role_id)
		 SELECT ?, r.id FROM roles r WHERE r.name='admin'
		 ON DUPLICATE KEY UPDATE user_id=user_id`, adminID); err != nil {
		return fmt.Errorf("seed admin role link: %w", err)
	}
	return nil
}
