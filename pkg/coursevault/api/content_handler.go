package api

import (
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// ContentHandler handles HTTP requests for portal content
type ContentHandler struct {
	service coursevault.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(service coursevault.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Routes returns the router for content endpoints
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/{kind}/upload", h.UploadContent)
	r.Get("/{kind}", h.ListContent)
	r.Delete("/{kind}/{id}", h.DeleteContent)

	return r
}

// kindSlugs maps URL path segments to content kinds.
var kindSlugs = map[string]coursevault.ContentKind{
	"materials":      coursevault.ContentKindMaterial,
	"question-banks": coursevault.ContentKindQuestionBank,
	"updates":        coursevault.ContentKindUpdate,
}

func kindFromParam(r *http.Request) (coursevault.ContentKind, error) {
	slug := chi.URLParam(r, "kind")
	kind, ok := kindSlugs[slug]
	if !ok {
		return "", &coursevault.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown content kind %q", slug)}
	}
	return kind, nil
}

// UploadContent accepts a multipart upload and creates a content record.
// Expected parts: file plus title, description, year, department, createdBy.
func (h *ContentHandler) UploadContent(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, coursevault.ErrMissingFile)
		return
	}
	defer file.Close()

	req := coursevault.UploadContentRequest{
		Kind:        kind,
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Year:        r.FormValue("year"),
		Department:  r.FormValue("department"),
		CreatedBy:   r.FormValue("createdBy"),
		FileName:    header.Filename,
		MimeType:    detectMimeType(header),
		Size:        header.Size,
		Reader:      file,
	}

	record, err := h.service.UploadContent(r.Context(), req)
	if err != nil {
		slog.Error("Failed to upload content", "kind", kind, "file_name", header.Filename, "error", err)
		respondError(w, r, err)
		return
	}

	respondData(w, r, http.StatusCreated, record)
}

// detectMimeType prefers the declared part type, falling back to the file
// extension when the declaration is absent or generic.
func detectMimeType(header *multipart.FileHeader) string {
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(filepath.Ext(header.Filename)); byExt != "" {
			mimeType = byExt
		}
	}
	return mimeType
}

// ListContent returns the records of one kind, optionally filtered by year
// and department query parameters.
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	filter := coursevault.ContentFilter{
		Year:       r.URL.Query().Get("year"),
		Department: r.URL.Query().Get("department"),
	}

	records, err := h.service.ListContent(r.Context(), kind, filter)
	if err != nil {
		slog.Error("Failed to list content", "kind", kind, "error", err)
		respondError(w, r, err)
		return
	}
	if records == nil {
		records = []*coursevault.ContentRecord{}
	}

	respondData(w, r, http.StatusOK, records)
}

// DeleteContent removes a record and its blob. The blob delete is
// best-effort; an already-missing blob does not fail the request.
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	kind, err := kindFromParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, &coursevault.ValidationError{Field: "id", Reason: "must be a UUID"})
		return
	}

	if err := h.service.DeleteContent(r.Context(), kind, id); err != nil {
		slog.Error("Failed to delete content", "kind", kind, "content_id", id, "error", err)
		respondError(w, r, err)
		return
	}

	respondMessage(w, r, http.StatusOK, "content deleted")
}
