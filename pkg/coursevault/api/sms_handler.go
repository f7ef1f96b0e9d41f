package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// SMSHandler records and lists outbound notification sends
type SMSHandler struct {
	service coursevault.Service
}

// NewSMSHandler creates a new SMS log handler
func NewSMSHandler(service coursevault.Service) *SMSHandler {
	return &SMSHandler{service: service}
}

// Routes returns the router for SMS log endpoints
func (h *SMSHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Log)
	r.Get("/", h.List)

	return r
}

// SMSRequest is the request body for recording a notification send
type SMSRequest struct {
	Recipient string `json:"recipient"`
	Message   string `json:"message"`
	Status    string `json:"status,omitempty"`
	SentBy    string `json:"sent_by,omitempty"`
}

// Log records one outbound SMS for auditing.
func (h *SMSHandler) Log(w http.ResponseWriter, r *http.Request) {
	var req SMSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, &coursevault.ValidationError{Field: "body", Reason: "malformed JSON"})
		return
	}

	entry, err := h.service.LogSMS(r.Context(), coursevault.LogSMSRequest{
		Recipient: req.Recipient,
		Message:   req.Message,
		Status:    req.Status,
		SentBy:    req.SentBy,
	})
	if err != nil {
		slog.Error("Failed to log SMS", "recipient", req.Recipient, "error", err)
		respondError(w, r, err)
		return
	}

	respondData(w, r, http.StatusCreated, entry)
}

// List returns logged sends, optionally filtered by recipient.
func (h *SMSHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := coursevault.SMSFilter{
		Recipient: r.URL.Query().Get("recipient"),
	}

	logs, err := h.service.ListSMSLogs(r.Context(), filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if logs == nil {
		logs = []*coursevault.SMSLog{}
	}

	respondData(w, r, http.StatusOK, logs)
}
