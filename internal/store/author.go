package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
)

// ListAuthorsParams captures the resolved filter, search, sort, and
// pagination inputs for an author listing. SortBy must come from the author
// sort whitelist.
type ListAuthorsParams struct {
	PageParams
	Nationality string // exact nationality filter, empty = all
	Search      string // case-insensitive substring over first/last name and biography
	IsActive    *bool  // tri-state active filter, nil = all
	SortBy      string
	Order       string
}

// AuthorStore defines the interface for author persistence.
type AuthorStore interface {
	// List returns one page of authors matching the params plus the total count.
	List(ctx context.Context, params ListAuthorsParams) (*Page[domain.Author], error)

	// GetByID retrieves an author by their unique ID.
	// Returns ErrAuthorNotFound if the author does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Author, error)

	// Create saves a new author.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, author *domain.Author) error

	// Update persists a complete author record.
	// Returns ErrAuthorNotFound if the author does not exist and
	// ErrEmailExists on an email collision.
	Update(ctx context.Context, author *domain.Author) error

	// Delete removes an author by their ID.
	// Returns ErrAuthorNotFound if the author does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}
