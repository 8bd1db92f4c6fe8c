package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/document-gateway/internal/middleware"
	"github.com/iliyamo/document-gateway/internal/model"
	"github.com/iliyamo/document-gateway/internal/repository"
)

// fakeDocumentStore keeps documents in memory in insertion order.
type fakeDocumentStore struct {
	docs  map[string]model.Document
	order []string
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: map[string]model.Document{}}
}

func (f *fakeDocumentStore) Create(_ context.Context, d model.Document) error {
	f.docs[d.ID] = d
	f.order = append(f.order, d.ID)
	return nil
}

func (f *fakeDocumentStore) GetByID(_ context.Context, id string) (model.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return model.Document{}, repository.ErrNotFound
	}
	return d, nil
}

func (f *fakeDocumentStore) List(_ context.Context) ([]model.Document, error) {
	out := make([]model.Document, 0, len(f.order))
	for _, id := range f.order {
		out = append(out, f.docs[id])
	}
	return out, nil
}

func (f *fakeDocumentStore) Update(_ context.Context, id, title, description string) (model.Document, error) {
	d, ok := f.docs[id]
	if !ok {
		return model.Document{}, repository.ErrNotFound
	}
	if title != "" {
		d.Title = title
	}
	if description != "" {
		d.Description = description
	}
	f.docs[id] = d
	return d, nil
}

func (f *fakeDocumentStore) Delete(_ context.Context, id string) error {
	if _, ok := f.docs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.docs, id)
	for i, v := range f.order {
		if v == id {
			f.order = append(f.order[:i], f.order[i+1:]...)
			break
		}
	}
	return nil
}

// uploadRequest builds a multipart POST with the given form fields and an
// optional file part.
func uploadRequest(t *testing.T, fields map[string]string, fileName, fileBody string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(fileBody)); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return req
}

func TestCreateStoresUploadAndRecord(t *testing.T) {
	store := newFakeDocumentStore()
	h := NewDocumentsHandler(store, t.TempDir())

	e := echo.New()
	req := uploadRequest(t, map[string]string{
		"title":       "Quarterly Report",
		"description": "Q3 numbers",
	}, "report.pdf", "%PDF-1.4 fake")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("identity", middleware.Identity{UserID: "owner-1", Username: "alice"})

	if err := h.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp documentResp
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	assert.Equal(t, "Quarterly Report", resp.Title)
	assert.Equal(t, "owner-1", resp.OwnerID)
	assert.Equal(t, ".pdf", filepath.Ext(resp.FilePath)) // stored name keeps the extension

	// The bytes landed on disk and the record points at them.
	data, err := os.ReadFile(resp.FilePath)
	if err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	assert.Equal(t, "%PDF-1.4 fake", string(data))
	assert.Contains(t, store.docs, resp.ID)
}

func TestCreateValidatesForm(t *testing.T) {
	h := NewDocumentsHandler(newFakeDocumentStore(), t.TempDir())
	e := echo.New()

	cases := []struct {
		name string
		req  *http.Request
	}{
		{"missing title", uploadRequest(t, nil, "report.pdf", "x")},
		{"missing file", uploadRequest(t, map[string]string{"title": "Report"}, "", "")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(tc.req, rec)
			c.Set("identity", middleware.Identity{UserID: "owner-1"})
			if err := h.Create(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetAndListDocuments(t *testing.T) {
	store := newFakeDocumentStore()
	_ = store.Create(context.Background(), model.Document{ID: "d1", Title: "One", OwnerID: "u1"})
	_ = store.Create(context.Background(), model.Document{ID: "d2", Title: "Two", OwnerID: "u1"})
	h := NewDocumentsHandler(store, t.TempDir())

	rec := serve(t, h.Get, http.MethodGet, "/documents/d1", "", "id", "d1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "One")

	rec = serve(t, h.Get, http.MethodGet, "/documents/nope", "", "id", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(t, h.List, http.MethodGet, "/documents", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var out []documentResp
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	assert.Len(t, out, 2)
}

func TestUpdateDocumentPartialFields(t *testing.T) {
	store := newFakeDocumentStore()
	_ = store.Create(context.Background(), model.Document{ID: "d1", Title: "Old", Description: "keep me"})
	h := NewDocumentsHandler(store, t.TempDir())

	rec := serve(t, h.Update, http.MethodPatch, "/documents/d1", `{"title":"New"}`, "id", "d1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New", store.docs["d1"].Title)
	assert.Equal(t, "keep me", store.docs["d1"].Description) // untouched field survives

	rec = serve(t, h.Update, http.MethodPatch, "/documents/nope", `{"title":"New"}`, "id", "nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteDocument(t *testing.T) {
	store := newFakeDocumentStore()
	_ = store.Create(context.Background(), model.Document{ID: "d1", Title: "One"})
	h := NewDocumentsHandler(store, t.TempDir())

	rec := serve(t, h.Delete, http.MethodDelete, "/documents/d1", "", "id", "d1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, store.docs, "d1")

	rec = serve(t, h.Delete, http.MethodDelete, "/documents/d1", "", "id", "d1")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
