package worker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/iliyamo/document-gateway/internal/queue"
)

func mustRequest(t *testing.T, pattern string, payload interface{}) queue.Request {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return queue.Request{Pattern: pattern, Data: data}
}

func TestDispatchIngest(t *testing.T) {
	t.Parallel()

	srv := NewServer("", "ingestion.rpc", NewStore(time.Minute, 1))
	reply, err := srv.Dispatch(mustRequest(t, queue.PatternIngest, queue.IngestRequest{Document: "doc1", ID: "job-1"}))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	ing, ok := reply.(queue.IngestReply)
	if !ok {
		t.Fatalf("reply type = %T, want IngestReply", reply)
	}
	if ing.ID != "job-1" || ing.Status != StatusProcessing {
		t.Fatalf("reply = %+v, want id job-1 processing", ing)
	}
}

func TestDispatchStatusUnknownJob(t *testing.T) {
	t.Parallel()

	srv := NewServer("", "ingestion.rpc", NewStore(time.Minute, 1))
	reply, err := srv.Dispatch(mustRequest(t, queue.PatternStatus, queue.StatusRequest{ID: "missing"}))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	st := reply.(queue.StatusReply)
	if st.Error != "Not found" {
		t.Fatalf("error = %q, want %q", st.Error, "Not found")
	}
}

func TestDispatchEmbeddingsLifecycle(t *testing.T) {
	t.Parallel()

	store := NewStore(10*time.Millisecond, 1)
	srv := NewServer("", "ingestion.rpc", store)
	store.Ingest("doc1", "job-2")

	// Before completion the reply carries the not-completed error.
	reply, err := srv.Dispatch(mustRequest(t, queue.PatternEmbeddings, queue.EmbeddingsRequest{ID: "job-2"}))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	if emb := reply.(queue.EmbeddingsReply); emb.Error != "Ingestion not completed yet" {
		t.Fatalf("error = %q, want not-completed", emb.Error)
	}

	waitTerminal(t, store, "job-2")
	reply, err = srv.Dispatch(mustRequest(t, queue.PatternEmbeddings, queue.EmbeddingsRequest{ID: "job-2"}))
	if err != nil {
		t.Fatalf("Dispatch error: %v", err)
	}
	emb := reply.(queue.EmbeddingsReply)
	if emb.Error != "" || len(emb.Embeddings) != EmbeddingDim {
		t.Fatalf("reply = %+v, want %d embeddings", emb, EmbeddingDim)
	}
}

func TestDispatchUnknownPattern(t *testing.T) {
	t.Parallel()

	srv := NewServer("", "ingestion.rpc", NewStore(time.Minute, 1))
	if _, err := srv.Dispatch(queue.Request{Pattern: "nope"}); err == nil {
		t.Fatalf("expected error for unknown pattern")
	}
}
