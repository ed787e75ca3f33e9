package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// MockBookStore implements store.BookStore for testing.
type MockBookStore struct {
	ListFn    func(ctx context.Context, params store.ListBooksParams) (*store.Page[domain.Book], error)
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Book, error)
	CreateFn  func(ctx context.Context, book *domain.Book) error
	UpdateFn  func(ctx context.Context, book *domain.Book) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	// Default responses used when no override is set.
	Books []domain.Book
	Book  *domain.Book
	Err   error
}

var _ store.BookStore = (*MockBookStore)(nil)

func (m *MockBookStore) List(
	ctx context.Context,
	params store.ListBooksParams,
) (*store.Page[domain.Book], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &store.Page[domain.Book]{Items: m.Books, Total: len(m.Books)}, nil
}

func (m *MockBookStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Book, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Book == nil {
		return nil, store.ErrBookNotFound
	}
	return m.Book, nil
}

func (m *MockBookStore) Create(ctx context.Context, book *domain.Book) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, book)
	}
	return m.Err
}

func (m *MockBookStore) Update(ctx context.Context, book *domain.Book) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, book)
	}
	return m.Err
}

func (m *MockBookStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Err
}
