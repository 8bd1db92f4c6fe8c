package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/document-gateway/internal/model"
)

// DocumentRepo persists document metadata in the 'documents' table.  The
// uploaded file itself lives on disk; only its path is stored.
type DocumentRepo struct{ DB *sql.DB }

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{DB: db} }

// Create inserts a document row.
func (r *DocumentRepo) Create(ctx context.Context, d model.Document) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO documents (id, title, description, file_path, owner_id) VALUES (?,?,?,?,?)",
		d.ID, d.Title, d.Description, d.FilePath, d.OwnerID)
	return err
}

// GetByID fetches a document by id.  ErrNotFound when absent.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (model.Document, error) {
	var d model.Document
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,title,description,file_path,owner_id,created_at,updated_at FROM documents WHERE id=? LIMIT 1",
		id).Scan(&d.ID, &d.Title, &d.Description, &d.FilePath, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.Document{}, ErrNotFound
	}
	return d, err
}

// List returns all documents ordered by creation time.
func (r *DocumentRepo) List(ctx context.Context) ([]model.Document, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,title,description,file_path,owner_id,created_at,updated_at FROM documents ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(&d.ID, &d.Title, &d.Description, &d.FilePath, &d.OwnerID, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// Update changes the title and/or description of a document.  Empty
// values leave the current column untouched.  ErrNotFound when the row
// does not exist.
func (r *DocumentRepo) Update(ctx context.Context, id, title, description string) (model.Document, error) {
	if _, err := r.DB.ExecContext(ctx,
		`UPDATE documents
		    SET title = COALESCE(NULLIF(?, ''), title),
		        description = COALESCE(NULLIF(?, ''), description)
		  WHERE id = ?`, title, description, id); err != nil {
		return model.Document{}, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a document row.  ErrNotFound when nothing was deleted.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM documents WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
