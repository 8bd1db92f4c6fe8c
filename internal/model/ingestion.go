package model

import "time"

// Ingestion job status values.  A job starts as pending when the
// gateway creates its record, moves to processing once the worker
// acknowledges receipt, and the worker's own copy later settles in
// completed or failed.  The gateway's persisted row is not updated
// again after the initial processing/failed write, so the stored
// status can lag behind the worker's live status; live state must
// be queried over the worker boundary.
const (
    IngestionPending    = "pending"
    IngestionProcessing = "processing"
    IngestionCompleted  = "completed"
    IngestionFailed     = "failed"
)

// Ingestion represents a row in the `ingestions` table: the
// gateway's record of a triggered ingestion job.
//
// Fields:
//  ID         – primary key identifier (UUID, shared with the worker).
//  Status     – last status the gateway observed (see constants above).
//  DocumentID – document being ingested (nullable).
//  StartedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Ingestion struct {
    ID         string    // ingestions.id
    Status     string    // ingestions.status
    DocumentID *string   // ingestions.document_id (nullable)
    StartedAt  time.Time // ingestions.started_at
    UpdatedAt  time.Time // ingestions.updated_at
}
