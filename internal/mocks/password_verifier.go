package mocks

import (
	"github.com/libris-project/libris-api/internal/service/auth"
)

// MockPasswordVerifier implements auth.PasswordVerifier and
// auth.PasswordHasher for testing without paying the bcrypt cost.
type MockPasswordVerifier struct {
	CompareFn func(hashedPassword, password string) error
	HashFn    func(password string) (string, error)

	CompareErr error
	HashErr    error
}

var (
	_ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)
	_ auth.PasswordHasher   = (*MockPasswordVerifier)(nil)
)

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	return m.CompareErr
}

// Hash returns a recognizable fake hash so tests can assert the plaintext
// was not stored.
func (m *MockPasswordVerifier) Hash(password string) (string, error) {
	if m.HashFn != nil {
		return m.HashFn(password)
	}
	if m.HashErr != nil {
		return "", m.HashErr
	}
	return "hashed:" + password, nil
}
