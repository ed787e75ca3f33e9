package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/domain"
)

// pathID extracts and parses the {id} URL parameter. On a malformed value it
// writes a 400 validation envelope and returns false; the handler should
// return immediately.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithFieldErrors(w, r, http.StatusBadRequest, "Validation failed",
			[]shared.FieldError{{Field: "id", Message: "must be a valid UUID"}})
		return uuid.Nil, false
	}
	return id, true
}

// currentUser returns the authenticated identity attached by the auth
// middleware. A missing identity on a protected route is a wiring bug, not a
// client error, and is reported as a 500.
func currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(shared.UserContextKey).(*domain.User)
	if !ok || user == nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"An internal error occurred", errors.New("user missing from request context"))
		return nil, false
	}
	return user, true
}
