package model

import "time"

// Document represents an uploaded document as stored in the
// `documents` table.  The file contents live on disk under the
// configured upload directory; only the path is persisted.
//
// Fields:
//  ID          – primary key identifier (UUID).
//  Title       – display title supplied at upload time.
//  Description – optional free-text description.
//  FilePath    – location of the uploaded file on disk.
//  OwnerID     – user who uploaded the document.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Document struct {
    ID          string    // documents.id
    Title       string    // documents.title
    Description string    // documents.description
    FilePath    string    // documents.file_path
    OwnerID     string    // documents.owner_id
    CreatedAt   time.Time // documents.created_at
    UpdatedAt   time.Time // documents.updated_at
}
