package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// AttendanceHandler handles attendance marking and queries
type AttendanceHandler struct {
	service coursevault.Service
}

// NewAttendanceHandler creates a new attendance handler
func NewAttendanceHandler(service coursevault.Service) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Routes returns the router for attendance endpoints
func (h *AttendanceHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Mark)
	r.Get("/", h.List)
	r.Delete("/", h.Clear)

	return r
}

// MarkAttendanceRequest is the request body for batch attendance marking
type MarkAttendanceRequest struct {
	Records []AttendanceEntryRequest `json:"records"`
}

// AttendanceEntryRequest is one student's attendance for one period
type AttendanceEntryRequest struct {
	StudentID  string `json:"student_id"`
	Date       string `json:"date"`
	Period     string `json:"period,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Status     string `json:"status"`
	MarkedBy   string `json:"marked_by,omitempty"`
	Year       string `json:"year,omitempty"`
	Department string `json:"department,omitempty"`
}

// Mark inserts a batch of attendance records and reports how many were
// written.
func (h *AttendanceHandler) Mark(w http.ResponseWriter, r *http.Request) {
	var req MarkAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, &coursevault.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	entries := make([]coursevault.AttendanceEntry, 0, len(req.Records))
	for _, rec := range req.Records {
		entries = append(entries, coursevault.AttendanceEntry{
			StudentID:  rec.StudentID,
			Date:       rec.Date,
			Period:     rec.Period,
			Subject:    rec.Subject,
			Status:     rec.Status,
			MarkedBy:   rec.MarkedBy,
			Year:       rec.Year,
			Department: rec.Department,
		})
	}

	marked, err := h.service.MarkAttendance(r.Context(), entries)
	if err != nil {
		slog.Error("Failed to mark attendance", "marked", marked, "error", err)
		respondError(w, r, err)
		return
	}

	respondData(w, r, http.StatusCreated, map[string]int{"marked": marked})
}

// List returns attendance records for a student (studentId) or for a whole
// session (year, department, date, period).
func (h *AttendanceHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := coursevault.AttendanceFilter{
		StudentID:  query.Get("studentId"),
		Year:       query.Get("year"),
		Department: query.Get("department"),
		Date:       query.Get("date"),
		Period:     query.Get("period"),
	}

	records, err := h.service.ListAttendance(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if records == nil {
		records = []*coursevault.AttendanceRecord{}
	}

	respondData(w, r, http.StatusOK, records)
}

// Clear removes the records matching the same filters List accepts, so a
// wrongly marked session can be taken again.
func (h *AttendanceHandler) Clear(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := coursevault.AttendanceFilter{
		StudentID:  query.Get("studentId"),
		Year:       query.Get("year"),
		Department: query.Get("department"),
		Date:       query.Get("date"),
		Period:     query.Get("period"),
	}

	cleared, err := h.service.ClearAttendance(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondData(w, r, http.StatusOK, map[string]int64{"cleared": cleared})
}
