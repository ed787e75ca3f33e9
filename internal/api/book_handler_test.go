package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libris-project/libris-api/internal/api/middleware"
	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/mocks"
	"github.com/libris-project/libris-api/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testBook() domain.Book {
	return domain.Book{
		ID:            uuid.New(),
		Title:         "The Dispossessed",
		Author:        "Ursula K. Le Guin",
		ISBN:          "9780061054884",
		Genre:         "Science Fiction",
		PublishedDate: time.Date(1974, time.May, 1, 0, 0, 0, 0, time.UTC),
		Pages:         387,
		Description:   "An ambiguous utopia on the twin worlds of Anarres and Urras.",
		Publisher:     "Harper & Row",
		Language:      "English",
		Price:         12.99,
		InStock:       true,
		StockQuantity: 4,
	}
}

// newBookRouter mounts the book routes with the real validation pipeline so
// handler tests exercise the same middleware composition as production.
func newBookRouter(bookStore store.BookStore) http.Handler {
	h := NewBookHandler(bookStore, testLogger())
	v := shared.NewValidator()

	r := chi.NewRouter()
	r.Route("/books", func(r chi.Router) {
		r.With(middleware.ValidateQuery[ListBooksQuery](v)).Get("/", h.List)
		r.With(middleware.ValidateQuery[PageQuery](v)).Get("/available", h.ListAvailable)
		r.With(middleware.ValidateQuery[PageQuery](v)).Get("/genre/{genre}", h.ListByGenre)
		r.Get("/{id}", h.Get)
		r.With(middleware.ValidateBody[CreateBookRequest](v)).Post("/", h.Create)
		r.With(middleware.ValidateBody[UpdateBookRequest](v)).Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
	return r
}

func TestBookHandlerList(t *testing.T) {
	t.Parallel()

	t.Run("returns pagination metadata", func(t *testing.T) {
		t.Parallel()
		books := []domain.Book{testBook(), testBook()}
		bookStore := &mocks.MockBookStore{
			ListFn: func(ctx context.Context, params store.ListBooksParams) (*store.Page[domain.Book], error) {
				assert.Equal(t, 2, params.Page)
				assert.Equal(t, 10, params.Limit)
				return &store.Page[domain.Book]{Items: books, Total: 25}, nil
			},
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?page=2&limit=10", nil)
		newBookRouter(bookStore).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success    bool               `json:"success"`
			Count      int                `json:"count"`
			Total      int                `json:"total"`
			Pagination *shared.Pagination `json:"pagination"`
			Data       []domain.Book      `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, 2, body.Count)
		assert.Equal(t, 25, body.Total)
		assert.Len(t, body.Data, 2)
		require.NotNil(t, body.Pagination)
		assert.Equal(t, 2, body.Pagination.CurrentPage)
		assert.Equal(t, 3, body.Pagination.TotalPages)
		assert.True(t, body.Pagination.HasNext)
		assert.True(t, body.Pagination.HasPrev)
	})

	t.Run("rejects unlisted sort column", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books?sortBy=isbn", nil)
		newBookRouter(&mocks.MockBookStore{}).ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("filters by genre path parameter", func(t *testing.T) {
		t.Parallel()
		var gotGenre string
		bookStore := &mocks.MockBookStore{
			ListFn: func(ctx context.Context, params store.ListBooksParams) (*store.Page[domain.Book], error) {
				gotGenre = params.Genre
				return &store.Page[domain.Book]{}, nil
			},
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/genre/Science%20Fiction", nil)
		newBookRouter(bookStore).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Science Fiction", gotGenre)
	})

	t.Run("rejects unknown genre path parameter", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/genre/Poetry", nil)
		newBookRouter(&mocks.MockBookStore{}).ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("available listing restricts to stock", func(t *testing.T) {
		t.Parallel()
		var gotAvailable bool
		bookStore := &mocks.MockBookStore{
			ListFn: func(ctx context.Context, params store.ListBooksParams) (*store.Page[domain.Book], error) {
				gotAvailable = params.AvailableOnly
				return &store.Page[domain.Book]{}, nil
			},
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/available", nil)
		newBookRouter(bookStore).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, gotAvailable)
	})
}

func TestBookHandlerGet(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		book := testBook()
		bookStore := &mocks.MockBookStore{Book: &book}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/"+book.ID.String(), nil)
		newBookRouter(bookStore).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool        `json:"success"`
			Data    domain.Book `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, book.ID, body.Data.ID)
	})

	t.Run("missing returns 404", func(t *testing.T) {
		t.Parallel()
		bookStore := &mocks.MockBookStore{Err: store.ErrBookNotFound}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/"+uuid.NewString(), nil)
		newBookRouter(bookStore).ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Book not found", body.Message)
	})

	t.Run("malformed id returns 400", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/books/not-a-uuid", nil)
		newBookRouter(&mocks.MockBookStore{}).ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Errors, 1)
		assert.Equal(t, "id", body.Errors[0].Field)
	})
}

func TestBookHandlerCreate(t *testing.T) {
	t.Parallel()

	validPayload := `{
		"title": "The Dispossessed",
		"author": "Ursula K. Le Guin",
		"isbn": "9780061054884",
		"genre": "Science Fiction",
		"publishedDate": "1974-05-01",
		"pages": 387,
		"description": "An ambiguous utopia on the twin worlds of Anarres and Urras.",
		"publisher": "Harper & Row",
		"language": "English",
		"price": 12.99,
		"stockQuantity": 4
	}`

	t.Run("created", func(t *testing.T) {
		t.Parallel()
		var created *domain.Book
		bookStore := &mocks.MockBookStore{
			CreateFn: func(ctx context.Context, book *domain.Book) error {
				created = book
				return nil
			},
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(validPayload))
		newBookRouter(bookStore).ServeHTTP(w, r)

		require.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, created)
		assert.True(t, created.InStock)

		var body struct {
			Success bool        `json:"success"`
			Message string      `json:"message"`
			Data    domain.Book `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Book created successfully", body.Message)
		assert.Equal(t, created.ID, body.Data.ID)
	})

	t.Run("duplicate isbn returns 409", func(t *testing.T) {
		t.Parallel()
		bookStore := &mocks.MockBookStore{Err: store.ErrISBNExists}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(validPayload))
		newBookRouter(bookStore).ServeHTTP(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "A book with this ISBN already exists", body.Message)
	})

	t.Run("invalid payload rejected before store", func(t *testing.T) {
		t.Parallel()
		bookStore := &mocks.MockBookStore{
			CreateFn: func(ctx context.Context, book *domain.Book) error {
				t.Fatal("store must not be reached")
				return nil
			},
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/books", strings.NewReader(`{"title":""}`))
		newBookRouter(bookStore).ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Validation failed", body.Message)
		assert.NotEmpty(t, body.Errors)
	})
}

func TestBookHandlerUpdate(t *testing.T) {
	t.Parallel()

	t.Run("partial update re-derives stock", func(t *testing.T) {
		t.Parallel()
		book := testBook()
		var updated *domain.Book
		bookStore := &mocks.MockBookStore{
			Book: &book,
			UpdateFn: func(ctx context.Context, b *domain.Book) error {
				updated = b
				return nil
			},
		}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/books/"+book.ID.String(),
			strings.NewReader(`{"stockQuantity": 0}`))
		newBookRouter(bookStore).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, updated)
		assert.Equal(t, 0, updated.StockQuantity)
		assert.False(t, updated.InStock)
		assert.Equal(t, book.Title, updated.Title, "absent fields keep their values")
	})

	t.Run("missing book returns 404", func(t *testing.T) {
		t.Parallel()
		bookStore := &mocks.MockBookStore{Err: store.ErrBookNotFound}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/books/"+uuid.NewString(),
			strings.NewReader(`{"pages": 100}`))
		newBookRouter(bookStore).ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBookHandlerDelete(t *testing.T) {
	t.Parallel()

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()
		bookStore := &mocks.MockBookStore{}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/books/"+uuid.NewString(), nil)
		newBookRouter(bookStore).ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Book deleted successfully", body.Message)
	})

	t.Run("missing returns 404", func(t *testing.T) {
		t.Parallel()
		bookStore := &mocks.MockBookStore{Err: store.ErrBookNotFound}

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodDelete, "/books/"+uuid.NewString(), nil)
		newBookRouter(bookStore).ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
