package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// authorView is the wire representation of an author. It extends the stored
// record with the derived fullName and age fields.
type authorView struct {
	*domain.Author
	FullName string `json:"fullName"`
	Age      *int   `json:"age,omitempty"`
}

func newAuthorView(author *domain.Author) authorView {
	return authorView{
		Author:   author,
		FullName: author.FullName(),
		Age:      author.Age(time.Now().UTC()),
	}
}

func newAuthorViews(authors []domain.Author) []authorView {
	views := make([]authorView, len(authors))
	for i := range authors {
		views[i] = newAuthorView(&authors[i])
	}
	return views
}

// AuthorHandler serves the author catalog endpoints.
type AuthorHandler struct {
	authorStore store.AuthorStore
	logger      *slog.Logger
}

// NewAuthorHandler creates a new AuthorHandler.
func NewAuthorHandler(authorStore store.AuthorStore, logger *slog.Logger) *AuthorHandler {
	return &AuthorHandler{
		authorStore: authorStore,
		logger:      logger.With(slog.String("component", "author_handler")),
	}
}

// List handles GET /authors.
func (h *AuthorHandler) List(w http.ResponseWriter, r *http.Request) {
	query, ok := shared.Validated[ListAuthorsQuery](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	h.list(w, r, store.ListAuthorsParams{
		PageParams:  store.PageParams{Page: query.Page, Limit: query.Limit},
		Nationality: query.Nationality,
		Search:      query.Search,
		IsActive:    query.IsActive,
		SortBy:      query.SortBy,
		Order:       query.Order,
	})
}

// ListActive handles GET /authors/active.
func (h *AuthorHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	query, ok := shared.Validated[PageQuery](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	active := true
	h.list(w, r, store.ListAuthorsParams{
		PageParams: store.PageParams{Page: query.Page, Limit: query.Limit},
		IsActive:   &active,
		SortBy:     "createdAt",
		Order:      store.OrderDesc,
	})
}

// ListByNationality handles GET /authors/nationality/{nationality}.
func (h *AuthorHandler) ListByNationality(w http.ResponseWriter, r *http.Request) {
	nationality := chi.URLParam(r, "nationality")
	if nationality == "" || len(nationality) > 50 {
		shared.RespondWithFieldErrors(w, r, http.StatusBadRequest, "Validation failed",
			[]shared.FieldError{{Field: "nationality", Message: "must be between 1 and 50 characters"}})
		return
	}

	query, ok := shared.Validated[PageQuery](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	h.list(w, r, store.ListAuthorsParams{
		PageParams:  store.PageParams{Page: query.Page, Limit: query.Limit},
		Nationality: nationality,
		SortBy:      "createdAt",
		Order:       store.OrderDesc,
	})
}

func (h *AuthorHandler) list(w http.ResponseWriter, r *http.Request, params store.ListAuthorsParams) {
	page, err := h.authorStore.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list authors", "error", err)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	views := newAuthorViews(page.Items)
	shared.RespondWithList(w, r, views, len(views), page.Total, params.Page, params.Limit)
}

// Get handles GET /authors/{id}.
func (h *AuthorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	author, err := h.authorStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.Respond(w, r, http.StatusOK, shared.Envelope{Data: newAuthorView(author)})
}

// Create handles POST /authors.
func (h *AuthorHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Validated[CreateAuthorRequest](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	author := req.ToAuthor()
	if err := h.authorStore.Create(r.Context(), author); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("author created", "author_id", author.ID)
	shared.Respond(w, r, http.StatusCreated, shared.Envelope{
		Message: "Author created successfully",
		Data:    newAuthorView(author),
	})
}

// Update handles PUT /authors/{id}.
func (h *AuthorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	req, ok := shared.Validated[UpdateAuthorRequest](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	author, err := h.authorStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	req.Apply(author)
	if err := h.authorStore.Update(r.Context(), author); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("author updated", "author_id", author.ID)
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Author updated successfully",
		Data:    newAuthorView(author),
	})
}

// Delete handles DELETE /authors/{id}.
func (h *AuthorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.authorStore.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("author deleted", "author_id", id)
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Author deleted successfully",
	})
}
