package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. Entity-specific variants below wrap it.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would create a duplicate
	// of a unique entity (e.g., a user with the same email).
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific details.
	ErrInvalidEntity = errors.New("invalid entity")

	// Entity-specific "not found" errors

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)

	// ErrBookNotFound indicates that the requested book does not exist.
	ErrBookNotFound = fmt.Errorf("%w: book", ErrNotFound)

	// ErrAuthorNotFound indicates that the requested author does not exist.
	ErrAuthorNotFound = fmt.Errorf("%w: author", ErrNotFound)

	// Entity-specific "duplicate" errors

	// ErrEmailExists indicates that a record with the given email already
	// exists (users and authors both carry a unique email).
	ErrEmailExists = fmt.Errorf("%w: email", ErrDuplicate)

	// ErrISBNExists indicates that a book with the given ISBN already exists.
	ErrISBNExists = fmt.Errorf("%w: isbn", ErrDuplicate)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError checks if the error is any kind of "duplicate" error.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
