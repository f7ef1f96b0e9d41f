package api

import (
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// FilesHandler streams stored files back to clients
type FilesHandler struct {
	service coursevault.Service
}

// NewFilesHandler creates a new files handler
func NewFilesHandler(service coursevault.Service) *FilesHandler {
	return &FilesHandler{service: service}
}

// Routes returns the router for file retrieval endpoints
func (h *FilesHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/download/{id}", h.Download)
	r.Get("/view/{id}", h.View)

	return r
}

// Download streams the file as an attachment.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, "attachment")
}

// View streams the file inline for in-browser display.
func (h *FilesHandler) View(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, "inline")
}

func (h *FilesHandler) stream(w http.ResponseWriter, r *http.Request, disposition string) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		// A malformed id cannot name a record in any partition.
		respondError(w, r, coursevault.ErrContentNotFound)
		return
	}

	record, reader, err := h.service.OpenContentFile(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	defer reader.Close()

	contentType := record.FileType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": record.FileName}))
	if record.FileSize > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(record.FileSize, 10))
	}

	if _, err := io.Copy(w, reader); err != nil {
		// Headers are already written; all that is left is to log.
		slog.Error("Failed to stream file", "content_id", id, "error", err)
	}
}
