package api

import (
	"errors"
	"net/http"

	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/service/auth"
	"github.com/libris-project/libris-api/internal/store"
)

// MapErrorToStatusCode translates domain, store and auth errors into HTTP
// status codes. Unrecognized errors map to 500.
func MapErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrAccountDisabled):
		return http.StatusUnauthorized

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, auth.ErrProviderNotConfigured):
		return http.StatusNotImplemented

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.Is(err, domain.ErrInvalidEmail),
		errors.Is(err, domain.ErrInvalidPassword),
		errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrMissingCredential):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a client-facing message for the error. Internal
// details never leak; 500s always surface a generic message.
func GetSafeErrorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token expired"
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"
	case errors.Is(err, domain.ErrAccountDisabled):
		return "Account has been deactivated. Please contact support."
	case errors.Is(err, domain.ErrUnauthorized):
		return "Authentication required"
	case errors.Is(err, store.ErrBookNotFound):
		return "Book not found"
	case errors.Is(err, store.ErrAuthorNotFound):
		return "Author not found"
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"
	case errors.Is(err, store.ErrNotFound):
		return "Resource not found"
	case errors.Is(err, store.ErrISBNExists):
		return "A book with this ISBN already exists"
	case errors.Is(err, store.ErrEmailExists):
		return "Email already in use"
	case errors.Is(err, store.ErrDuplicate):
		return "Resource already exists"
	case errors.Is(err, auth.ErrProviderNotConfigured):
		return "Google authentication is not configured"
	case MapErrorToStatusCode(err) == http.StatusBadRequest:
		return "Invalid request"
	default:
		return "An internal error occurred"
	}
}
