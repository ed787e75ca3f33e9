package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Common user validation errors.
var (
	ErrEmptyUserID      = errors.New("user ID cannot be empty")
	ErrEmptyEmail       = errors.New("email cannot be empty")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password must be at most 72 characters long")
	ErrInvalidRole      = errors.New("role must be user or admin")
)

// User represents a registered identity.
//
// At least one of HashedPassword and GoogleID must be present at all times;
// the invariant is enforced whenever a user is created or updated.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Name           string    `json:"name"`
	Password       string    `json:"-"` // Plaintext, held only between parse and hash
	HashedPassword string    `json:"-"` // Never exposed in JSON
	GoogleID       string    `json:"-"`
	Avatar         string    `json:"avatar,omitempty"`
	Role           string    `json:"role"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewUser creates a User registered with an email and password.
// The caller is responsible for hashing Password before storing the user.
func NewUser(email, name, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		Password:  password,
		Role:      RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// NewGoogleUser creates a passwordless User established through a Google
// OAuth exchange.
func NewGoogleUser(googleID, email, name, avatar string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Name:      name,
		GoogleID:  googleID,
		Avatar:    avatar,
		Role:      RoleUser,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// HasCredential reports whether the user can still authenticate by some
// means, i.e. holds a password hash, a pending plaintext password, or a
// linked Google account.
func (u *User) HasCredential() bool {
	return u.HashedPassword != "" || u.Password != "" || u.GoogleID != ""
}

// Validate checks the user's invariants. Returns the first violation found.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}
	if u.Email == "" {
		return ErrEmptyEmail
	}
	if u.Name == "" {
		return ErrEmptyName
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return ErrInvalidRole
	}
	if u.Password != "" {
		if len(u.Password) < 6 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 { // bcrypt's practical input limit
			return ErrPasswordTooLong
		}
	}
	if !u.HasCredential() {
		return ErrMissingCredential
	}
	return nil
}

// PublicUser is the externally visible view of a User; it carries no
// credential material.
type PublicUser struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Public returns the credential-free view of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Avatar:    u.Avatar,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
