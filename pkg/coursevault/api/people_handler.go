package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// PeopleHandler handles person CRUD for a role partition
type PeopleHandler struct {
	service coursevault.Service
}

// NewPeopleHandler creates a new people handler
func NewPeopleHandler(service coursevault.Service) *PeopleHandler {
	return &PeopleHandler{service: service}
}

// RoutesFor returns the router for one role partition. The same handler
// backs /students, /faculty and /admins.
func (h *PeopleHandler) RoutesFor(role coursevault.Role) chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Add(role))
	r.Post("/bulk", h.BulkAdd(role))
	r.Post("/login", h.Login(role))
	r.Get("/", h.List(role))
	r.Delete("/", h.DeleteByFilter(role))
	r.Delete("/{id}", h.Delete(role))

	return r
}

// PersonRequest is the request body for adding a person
type PersonRequest struct {
	UserID     string `json:"user_id"`
	Password   string `json:"password"`
	Name       string `json:"name"`
	Year       string `json:"year,omitempty"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// LoginRequest is the request body for credential checks
type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

func addRequest(role coursevault.Role, req PersonRequest) coursevault.AddPersonRequest {
	return coursevault.AddPersonRequest{
		Role:       role,
		UserID:     req.UserID,
		Password:   req.Password,
		Name:       req.Name,
		Year:       req.Year,
		Department: req.Department,
		Phone:      req.Phone,
	}
}

// Add registers one person. A duplicate user id is a soft failure: the
// response is a 200 with success false, not an error status.
func (h *PeopleHandler) Add(role coursevault.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PersonRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, &coursevault.ValidationError{Field: "body", Reason: "malformed JSON"})
			return
		}

		person, err := h.service.AddPerson(r.Context(), addRequest(role, req))
		if err != nil {
			respondError(w, r, err)
			return
		}

		respondData(w, r, http.StatusCreated, person)
	}
}

// BulkAdd registers a batch of people, reporting how many were added and
// which user ids were already taken.
func (h *PeopleHandler) BulkAdd(role coursevault.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reqs []PersonRequest
		if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
			respondError(w, r, &coursevault.ValidationError{Field: "body", Reason: "malformed JSON"})
			return
		}

		batch := make([]coursevault.AddPersonRequest, 0, len(reqs))
		for _, req := range reqs {
			batch = append(batch, addRequest(role, req))
		}

		result, err := h.service.BulkAddPeople(r.Context(), role, batch)
		if err != nil {
			slog.Error("Failed to bulk add people", "role", role, "error", err)
			respondError(w, r, err)
			return
		}

		respondData(w, r, http.StatusOK, result)
	}
}

// Login checks credentials. Unknown user and wrong password both come back
// as 404; the response never says which.
func (h *PeopleHandler) Login(role coursevault.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, &coursevault.ValidationError{Field: "body", Reason: "malformed JSON"})
			return
		}

		person, err := h.service.Login(r.Context(), coursevault.LoginRequest{
			Role:     role,
			UserID:   req.UserID,
			Password: req.Password,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}

		respondData(w, r, http.StatusOK, person)
	}
}

// List returns the people of one role, optionally filtered by year and
// department query parameters.
func (h *PeopleHandler) List(role coursevault.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := coursevault.PersonFilter{
			Year:       r.URL.Query().Get("year"),
			Department: r.URL.Query().Get("department"),
		}

		people, err := h.service.ListPeople(r.Context(), role, filter)
		if err != nil {
			slog.Error("Failed to list people", "role", role, "error", err)
			respondError(w, r, err)
			return
		}
		if people == nil {
			people = []*coursevault.Person{}
		}

		respondData(w, r, http.StatusOK, people)
	}
}

// Delete removes one person by id.
func (h *PeopleHandler) Delete(role coursevault.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			respondError(w, r, &coursevault.ValidationError{Field: "id", Reason: "must be a UUID"})
			return
		}

		if err := h.service.DeletePerson(r.Context(), role, id); err != nil {
			respondError(w, r, err)
			return
		}

		respondMessage(w, r, http.StatusOK, "person deleted")
	}
}

// DeleteByFilter removes everyone of the role matching the year and
// department query parameters. A call with neither parameter is a 400.
func (h *PeopleHandler) DeleteByFilter(role coursevault.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := coursevault.PersonFilter{
			Year:       r.URL.Query().Get("year"),
			Department: r.URL.Query().Get("department"),
		}

		removed, err := h.service.DeletePeople(r.Context(), role, filter)
		if err != nil {
			respondError(w, r, err)
			return
		}

		respondData(w, r, http.StatusOK, map[string]int64{"removed": removed})
	}
}
