package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libris-project/libris-api/internal/config"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/store"
)

// fakeUserStore is a minimal in-memory store.UserStore for provider tests.
// The shared mocks package imports this package, so it cannot be used here.
type fakeUserStore struct {
	users []*domain.User
}

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error) {
	for _, u := range f.users {
		if u.GoogleID == googleID {
			return u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (f *fakeUserStore) Update(ctx context.Context, user *domain.User) error {
	for i, u := range f.users {
		if u.ID == user.ID {
			f.users[i] = user
			return nil
		}
	}
	return store.ErrUserNotFound
}

func TestGoogleProvider_Unconfigured(t *testing.T) {
	t.Parallel()

	p := NewGoogleProvider(config.GoogleConfig{}, &fakeUserStore{})

	assert.False(t, p.Configured())

	_, err := p.AuthCodeURL("state")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)

	_, err = p.Exchange(context.Background(), "code")
	assert.ErrorIs(t, err, ErrProviderNotConfigured)
}

func TestGoogleProvider_Configured(t *testing.T) {
	t.Parallel()

	p := NewGoogleProvider(config.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		CallbackURL:  "http://localhost:8080/api/v1/auth/google/callback",
	}, &fakeUserStore{})

	require.True(t, p.Configured())

	url, err := p.AuthCodeURL("some-state")
	require.NoError(t, err)
	assert.Contains(t, url, "state=some-state")
	assert.Contains(t, url, "client_id=client-id")
}

func TestGoogleProvider_ResolveUser(t *testing.T) {
	t.Parallel()

	profile := &GoogleProfile{
		ID:     "google-123",
		Email:  "reader@example.com",
		Name:   "Reader",
		Avatar: "https://example.com/a.png",
	}

	t.Run("returns existing linked user", func(t *testing.T) {
		t.Parallel()
		existing, err := domain.NewGoogleUser("google-123", "reader@example.com", "Reader", "")
		require.NoError(t, err)
		fs := &fakeUserStore{users: []*domain.User{existing}}
		p := NewGoogleProvider(config.GoogleConfig{}, fs)

		user, err := p.ResolveUser(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
		assert.Len(t, fs.users, 1)
	})

	t.Run("links by email without touching password", func(t *testing.T) {
		t.Parallel()
		existing, err := domain.NewUser("reader@example.com", "Reader", "password123")
		require.NoError(t, err)
		existing.HashedPassword = "stored-hash"
		fs := &fakeUserStore{users: []*domain.User{existing}}
		p := NewGoogleProvider(config.GoogleConfig{}, fs)

		user, err := p.ResolveUser(context.Background(), profile)
		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)
		assert.Equal(t, "google-123", user.GoogleID)
		assert.Equal(t, "stored-hash", user.HashedPassword)
		assert.Equal(t, profile.Avatar, user.Avatar)
	})

	t.Run("creates passwordless user when unknown", func(t *testing.T) {
		t.Parallel()
		fs := &fakeUserStore{}
		p := NewGoogleProvider(config.GoogleConfig{}, fs)

		user, err := p.ResolveUser(context.Background(), profile)
		require.NoError(t, err)
		assert.Empty(t, user.HashedPassword)
		assert.Equal(t, "google-123", user.GoogleID)
		assert.True(t, user.HasCredential())
		assert.Len(t, fs.users, 1)
	})
}
