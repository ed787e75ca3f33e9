package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// MockUserStore implements store.UserStore for testing. Without overrides it
// behaves as a small in-memory store keyed by ID, email, and Google ID.
type MockUserStore struct {
	CreateFn        func(ctx context.Context, user *domain.User) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	GetByGoogleIDFn func(ctx context.Context, googleID string) (*domain.User, error)
	UpdateFn        func(ctx context.Context, user *domain.User) error

	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

var _ store.UserStore = (*MockUserStore)(nil)

// NewMockUserStore creates an empty in-memory user store.
func NewMockUserStore(seed ...*domain.User) *MockUserStore {
	m := &MockUserStore{users: make(map[uuid.UUID]*domain.User)}
	for _, u := range seed {
		copied := *u
		m.users[u.ID] = &copied
	}
	return m
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *MockUserStore) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	if m.GetByGoogleIDFn != nil {
		return m.GetByGoogleIDFn(ctx, googleID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.GoogleID != "" && user.GoogleID == googleID {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[user.ID]; !ok {
		return store.ErrUserNotFound
	}
	for id, existing := range m.users {
		if id != user.ID && existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}
