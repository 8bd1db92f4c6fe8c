package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/document-gateway/internal/model"
)

// IngestionRepo persists the gateway's view of ingestion jobs.  The
// stored status is the last state the gateway observed (pending, then
// processing or failed after the trigger handshake); the worker's live
// state is queried over the worker boundary, never read from here.
type IngestionRepo struct{ DB *sql.DB }

func NewIngestionRepo(db *sql.DB) *IngestionRepo { return &IngestionRepo{DB: db} }

// Create inserts a job row.
func (r *IngestionRepo) Create(ctx context.Context, job model.Ingestion) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO ingestions (id, status, document_id) VALUES (?,?,?)",
		job.ID, job.Status, job.DocumentID)
	return err
}

// UpdateStatus writes the status the gateway observed for a job.
func (r *IngestionRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE ingestions SET status=? WHERE id=?", status, id)
	return err
}

// List returns the gateway's persisted snapshot of all jobs.  The result
// may lag behind the worker's live state; that divergence is part of the
// contract.
func (r *IngestionRepo) List(ctx context.Context) ([]model.Ingestion, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,status,document_id,started_at,updated_at FROM ingestions ORDER BY started_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []model.Ingestion
	for rows.Next() {
		var (
			j     model.Ingestion
			docID sql.NullString
		)
		if err := rows.Scan(&j.ID, &j.Status, &docID, &j.StartedAt, &j.UpdatedAt); err != nil {
			return nil, err
		}
		if docID.Valid {
			j.DocumentID = &docID.String
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
