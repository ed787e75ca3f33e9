package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
)

// ListBooksParams captures the resolved filter, search, sort, and pagination
// inputs for a book listing. All values are assumed to be validated; in
// particular SortBy must come from the book sort whitelist.
type ListBooksParams struct {
	PageParams
	Genre         string // exact genre filter, empty = all
	Search        string // case-insensitive substring over title/author/description
	AvailableOnly bool   // restrict to in-stock books
	SortBy        string
	Order         string
}

// BookStore defines the interface for book persistence.
type BookStore interface {
	// List returns one page of books matching the params plus the total count.
	List(ctx context.Context, params ListBooksParams) (*Page[domain.Book], error)

	// GetByID retrieves a book by its unique ID.
	// Returns ErrBookNotFound if the book does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error)

	// Create saves a new book.
	// Returns ErrISBNExists if the ISBN is already taken.
	Create(ctx context.Context, book *domain.Book) error

	// Update persists a complete book record.
	// Returns ErrBookNotFound if the book does not exist and ErrISBNExists
	// if the update would collide with another book's ISBN.
	Update(ctx context.Context, book *domain.Book) error

	// Delete removes a book by its ID.
	// Returns ErrBookNotFound if the book does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
