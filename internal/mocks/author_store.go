package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// MockAuthorStore implements store.AuthorStore for testing.
type MockAuthorStore struct {
	ListFn    func(ctx context.Context, params store.ListAuthorsParams) (*store.Page[domain.Author], error)
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Author, error)
	CreateFn  func(ctx context.Context, author *domain.Author) error
	UpdateFn  func(ctx context.Context, author *domain.Author) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error

	// Default responses used when no override is set.
	Authors []domain.Author
	Author  *domain.Author
	Err     error
}

var _ store.AuthorStore = (*MockAuthorStore)(nil)

func (m *MockAuthorStore) List(
	ctx context.Context,
	params store.ListAuthorsParams,
) (*store.Page[domain.Author], error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, params)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return &store.Page[domain.Author]{Items: m.Authors, Total: len(m.Authors)}, nil
}

func (m *MockAuthorStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Author, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Author == nil {
		return nil, store.ErrAuthorNotFound
	}
	return m.Author, nil
}

func (m *MockAuthorStore) Create(ctx context.Context, author *domain.Author) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, author)
	}
	return m.Err
}

func (m *MockAuthorStore) Update(ctx context.Context, author *domain.Author) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, author)
	}
	return m.Err
}

func (m *MockAuthorStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Err
}
