package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/libris-project/libris-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store. The user's Password must
	// already have been hashed into HashedPassword by the caller.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their lower-cased email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// GetByGoogleID retrieves a user by their linked Google account ID.
	// Returns ErrUserNotFound if no user is linked to it.
	GetByGoogleID(ctx context.Context, googleID string) (*domain.User, error)

	// Update persists a complete user record including HashedPassword.
	// Returns ErrUserNotFound if the user does not exist.
	// Returns ErrEmailExists if updating to an email that is already taken.
	Update(ctx context.Context, user *domain.User) error
}
