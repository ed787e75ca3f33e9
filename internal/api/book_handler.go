package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// BookHandler serves the book catalog endpoints. Request payloads arrive
// pre-validated in the request context; the handler translates them into
// store calls and wraps the results in the response envelope.
type BookHandler struct {
	bookStore store.BookStore
	logger    *slog.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(bookStore store.BookStore, logger *slog.Logger) *BookHandler {
	return &BookHandler{
		bookStore: bookStore,
		logger:    logger.With(slog.String("component", "book_handler")),
	}
}

// List handles GET /books.
func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	query, ok := shared.Validated[ListBooksQuery](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	h.list(w, r, store.ListBooksParams{
		PageParams: store.PageParams{Page: query.Page, Limit: query.Limit},
		Genre:      query.Genre,
		Search:     query.Search,
		SortBy:     query.SortBy,
		Order:      query.Order,
	})
}

// ListByGenre handles GET /books/genre/{genre}.
func (h *BookHandler) ListByGenre(w http.ResponseWriter, r *http.Request) {
	genre := chi.URLParam(r, "genre")
	if !domain.IsValidGenre(genre) {
		shared.RespondWithFieldErrors(w, r, http.StatusBadRequest, "Validation failed",
			[]shared.FieldError{{Field: "genre", Message: "must be a recognized genre"}})
		return
	}

	query, ok := shared.Validated[PageQuery](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	h.list(w, r, store.ListBooksParams{
		PageParams: store.PageParams{Page: query.Page, Limit: query.Limit},
		Genre:      genre,
		SortBy:     "createdAt",
		Order:      store.OrderDesc,
	})
}

// ListAvailable handles GET /books/available.
func (h *BookHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	query, ok := shared.Validated[PageQuery](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	h.list(w, r, store.ListBooksParams{
		PageParams:    store.PageParams{Page: query.Page, Limit: query.Limit},
		AvailableOnly: true,
		SortBy:        "createdAt",
		Order:         store.OrderDesc,
	})
}

func (h *BookHandler) list(w http.ResponseWriter, r *http.Request, params store.ListBooksParams) {
	page, err := h.bookStore.List(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to list books", "error", err)
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithList(w, r, page.Items, len(page.Items), page.Total, params.Page, params.Limit)
}

// Get handles GET /books/{id}.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.Respond(w, r, http.StatusOK, shared.Envelope{Data: book})
}

// Create handles POST /books.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Validated[CreateBookRequest](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	book := req.ToBook()
	if err := h.bookStore.Create(r.Context(), book); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("book created", "book_id", book.ID, "isbn", book.ISBN)
	shared.Respond(w, r, http.StatusCreated, shared.Envelope{
		Message: "Book created successfully",
		Data:    book,
	})
}

// Update handles PUT /books/{id}.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	req, ok := shared.Validated[UpdateBookRequest](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	book, err := h.bookStore.GetByID(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	req.Apply(book)
	if err := h.bookStore.Update(r.Context(), book); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("book updated", "book_id", book.ID)
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Book updated successfully",
		Data:    book,
	})
}

// Delete handles DELETE /books/{id}.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.bookStore.Delete(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("book deleted", "book_id", id)
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Book deleted successfully",
	})
}
