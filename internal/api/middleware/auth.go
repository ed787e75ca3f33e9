package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/service/auth"
	"github.com/libris-project/libris-api/internal/store"
)

// AuthMiddleware provides JWT authentication for protected routes.
// It runs after request validation: a malformed payload is rejected before
// any effort is spent resolving an identity.
type AuthMiddleware struct {
	jwtService auth.JWTService
	userStore  store.UserStore
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService, userStore store.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		userStore:  userStore,
	}
}

// Authenticate validates the bearer token from the Authorization header,
// resolves it to an active identity, and attaches that identity to the
// request context with its credential material stripped.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
			default:
				slog.Error("failed to validate token", "error", err)
				shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			}
			return
		}

		user, err := m.userStore.GetByID(r.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
				return
			}
			slog.Error("failed to resolve token identity",
				"error", err, "user_id", claims.UserID)
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		if !user.IsActive {
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				"Account has been deactivated. Please contact support.")
			return
		}

		// The attached view never carries credential material.
		view := *user
		view.Password = ""
		view.HashedPassword = ""

		ctx := context.WithValue(r.Context(), shared.UserContextKey, &view)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUser extracts the authenticated user from the request context.
// Returns the user and a boolean indicating if it was found.
func GetUser(r *http.Request) (*domain.User, bool) {
	user, ok := r.Context().Value(shared.UserContextKey).(*domain.User)
	return user, ok
}
