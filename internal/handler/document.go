package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/document-gateway/internal/middleware"
	"github.com/iliyamo/document-gateway/internal/model"
	"github.com/iliyamo/document-gateway/internal/repository"
)

// DocumentStore is the slice of the document repository the handler
// depends on.
type DocumentStore interface {
	Create(ctx context.Context, d model.Document) error
	GetByID(ctx context.Context, id string) (model.Document, error)
	List(ctx context.Context) ([]model.Document, error)
	Update(ctx context.Context, id, title, description string) (model.Document, error)
	Delete(ctx context.Context, id string) error
}

// DocumentsHandler serves document CRUD plus multipart upload.
type DocumentsHandler struct {
	Docs      DocumentStore
	UploadDir string
}

func NewDocumentsHandler(d DocumentStore, uploadDir string) *DocumentsHandler {
	return &DocumentsHandler{Docs: d, UploadDir: uploadDir}
}

type documentResp struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	FilePath    string    `json:"filePath"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toDocumentResp(d model.Document) documentResp {
	return documentResp{
		ID: d.ID, Title: d.Title, Description: d.Description,
		FilePath: d.FilePath, OwnerID: d.OwnerID,
		CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt,
	}
}

// List handles GET /documents.
func (h *DocumentsHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	docs, err := h.Docs.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]documentResp, 0, len(docs))
	for _, d := range docs {
		out = append(out, toDocumentResp(d))
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /documents/:id.
func (h *DocumentsHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.Docs.GetByID(ctx, c.Param("id"))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toDocumentResp(doc))
}

// Create handles POST /documents: a multipart form with a required title
// and file part.  The file is stored under the upload directory with a
// collision-resistant name; only the path is persisted.
func (h *DocumentsHandler) Create(c echo.Context) error {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "read upload failed"})
	}
	defer src.Close()

	if err := os.MkdirAll(h.UploadDir, 0o755); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save upload failed"})
	}
	docID := uuid.NewString()
	filePath := filepath.Join(h.UploadDir, docID+filepath.Ext(fileHeader.Filename))
	dst, err := os.Create(filePath)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save upload failed"})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save upload failed"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc := model.Document{
		ID:          docID,
		Title:       title,
		Description: strings.TrimSpace(c.FormValue("description")),
		FilePath:    filePath,
		OwnerID:     id.UserID,
	}
	if err := h.Docs.Create(ctx, doc); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create document failed"})
	}
	return c.JSON(http.StatusCreated, toDocumentResp(doc))
}

// Update handles PATCH /documents/:id.
func (h *DocumentsHandler) Update(c echo.Context) error {
	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	doc, err := h.Docs.Update(ctx, c.Param("id"), strings.TrimSpace(req.Title), strings.TrimSpace(req.Description))
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update document failed"})
	}
	return c.JSON(http.StatusOK, toDocumentResp(doc))
}

// Delete handles DELETE /documents/:id.
func (h *DocumentsHandler) Delete(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Docs.Delete(ctx, c.Param("id")); err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "document not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete document failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Document deleted"})
}
