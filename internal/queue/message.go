// Package queue defines the worker boundary: the named-message
// request/response contract between the gateway and the ingestion worker,
// and the RabbitMQ RPC client the gateway uses to speak it.
package queue

import "encoding/json"

// Message patterns understood by the ingestion worker.
const (
	PatternIngest     = "ingest"
	PatternStatus     = "status"
	PatternEmbeddings = "embeddings"
)

// Request is the envelope published to the worker's RPC queue.  Pattern
// selects the operation; Data carries the operation payload.
type Request struct {
	Pattern string          `json:"pattern"`
	Data    json.RawMessage `json:"data"`
}

// IngestRequest asks the worker to start ingesting a document.  ID is the
// gateway-allocated job id; when empty the worker allocates one.
type IngestRequest struct {
	Document string `json:"document"`
	ID       string `json:"id,omitempty"`
}

// StatusRequest asks for the live status of a job.
type StatusRequest struct {
	ID string `json:"id"`
}

// EmbeddingsRequest asks for the embedding vector of a completed job.
type EmbeddingsRequest struct {
	ID string `json:"id"`
}

// IngestReply acknowledges an ingest request.  A healthy worker answers
// with Status "processing"; anything else fails the trigger.
type IngestReply struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusReply reports the worker's live view of a job.  Error is set when
// the worker has no record of the id.
type StatusReply struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// EmbeddingsReply carries the embedding vector of a completed job.  Error
// is set when the job is unknown or has not completed.
type EmbeddingsReply struct {
	ID         string    `json:"id"`
	Embeddings []float64 `json:"embeddings,omitempty"`
	Error      string    `json:"error,omitempty"`
}
