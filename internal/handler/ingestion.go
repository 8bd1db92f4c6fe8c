package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/document-gateway/internal/model"
	"github.com/iliyamo/document-gateway/internal/queue"
)

// IngestionStore is the gateway-side persistence slice the orchestrator
// needs: its own job rows, never the worker's live state.
type IngestionStore interface {
	Create(ctx context.Context, job model.Ingestion) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context) ([]model.Ingestion, error)
}

// IngestionHandler orchestrates ingestion jobs: it owns the persisted
// job records and drives the worker over the RPC boundary.  Live state
// (status, embeddings) always comes from the worker; the persisted rows
// only record what the gateway last observed, and the two views are
// allowed to diverge.
type IngestionHandler struct {
	Jobs   IngestionStore
	Worker queue.WorkerClient
}

func NewIngestionHandler(jobs IngestionStore, worker queue.WorkerClient) *IngestionHandler {
	return &IngestionHandler{Jobs: jobs, Worker: worker}
}

type triggerReq struct {
	DocumentID string `json:"documentId"`
}

type ingestionResp struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	DocumentID *string   `json:"documentId"`
	StartedAt  time.Time `json:"startedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Trigger handles POST /ingestion/trigger.  A job row is created in
// pending, the worker is called synchronously, and the row settles in
// processing on a positive acknowledgment or failed on anything else.
// A failed handshake is a 500; it is never folded into a success reply.
func (h *IngestionHandler) Trigger(c echo.Context) error {
	var req triggerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	docID := strings.TrimSpace(req.DocumentID)
	if docID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "documentId is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	job := model.Ingestion{
		ID:         uuid.NewString(),
		Status:     model.IngestionPending,
		DocumentID: &docID,
	}
	if err := h.Jobs.Create(ctx, job); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create ingestion failed"})
	}

	reply, err := h.Worker.Ingest(ctx, docID, job.ID)
	if err != nil || reply.Status != model.IngestionProcessing {
		// Transport failure and an unexpected acknowledgment both fail
		// the trigger; the persisted row records the failure.
		_ = h.Jobs.UpdateStatus(ctx, job.ID, model.IngestionFailed)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to trigger ingestion process"})
	}
	if err := h.Jobs.UpdateStatus(ctx, job.ID, model.IngestionProcessing); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update ingestion failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"ingestionId": job.ID,
		"status":      model.IngestionProcessing,
	})
}

// Status handles GET /ingestion/:id.  It never reads the gateway's own
// row: the worker is queried live.  An unknown job and a transport
// failure are indistinguishable to the caller; both answer 404.
func (h *IngestionHandler) Status(c echo.Context) error {
	id := c.Param("id")

	reply, err := h.Worker.Status(c.Request().Context(), id)
	if err != nil || reply.Error != "" || reply.Status == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "ingestion not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": reply.Status})
}

// List handles GET /ingestion: the gateway's persisted snapshot.  Rows
// may lag the worker's live state (a job completed on the worker still
// shows processing here); that divergence is part of the contract.
func (h *IngestionHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	jobs, err := h.Jobs.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]ingestionResp, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ingestionResp{
			ID: j.ID, Status: j.Status, DocumentID: j.DocumentID,
			StartedAt: j.StartedAt, UpdatedAt: j.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Embeddings handles GET /ingestion/:id/embeddings.  Unknown job,
// unfinished job and transport failure all answer the same 404; the
// vector only exists in the completed state.
func (h *IngestionHandler) Embeddings(c echo.Context) error {
	id := c.Param("id")

	reply, err := h.Worker.Embeddings(c.Request().Context(), id)
	if err != nil || reply.Error != "" || len(reply.Embeddings) == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "embeddings not found"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "embeddings": reply.Embeddings})
}
