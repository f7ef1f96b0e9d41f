package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/edupage-labs/coursevault/pkg/coursevault"
)

// envelope is the JSON shape shared by every API response: success plus
// exactly one of data, message or error.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// respondData writes a success envelope carrying data.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Success: true, Data: data})
}

// respondMessage writes a success envelope carrying a human-readable message.
func respondMessage(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, envelope{Success: true, Message: message})
}

// respondError translates a service error into the envelope. Validation and
// upload-gate failures map to 400, the not-found class to 404, and duplicate
// user ids to a 200 soft failure so bulk semantics hold for single inserts.
// Everything else is a 500 with the message surfaced verbatim.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *coursevault.ValidationError

	switch {
	case errors.As(err, &validation),
		errors.Is(err, coursevault.ErrMissingFile),
		errors.Is(err, coursevault.ErrFileTypeNotAllowed),
		errors.Is(err, coursevault.ErrFileTooLarge):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, envelope{Success: false, Message: err.Error()})

	case errors.Is(err, coursevault.ErrDuplicateUserID):
		render.Status(r, http.StatusOK)
		render.JSON(w, r, envelope{Success: false, Message: err.Error()})

	case errors.Is(err, coursevault.ErrContentNotFound),
		errors.Is(err, coursevault.ErrNoFileAttached),
		errors.Is(err, coursevault.ErrBlobNotFound),
		errors.Is(err, coursevault.ErrInvalidBlobRef),
		errors.Is(err, coursevault.ErrPersonNotFound):
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, envelope{Success: false, Message: err.Error()})

	default:
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, envelope{Success: false, Error: err.Error()})
	}
}
