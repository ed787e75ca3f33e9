package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/service/auth"
	"github.com/libris-project/libris-api/internal/store"
)

// oauthStateCookie carries the anti-forgery state between the Google redirect
// and its callback.
const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute
)

// AuthHandler serves registration, login, profile, and Google OAuth
// endpoints.
type AuthHandler struct {
	userStore      store.UserStore
	jwtService     auth.JWTService
	passwordHasher auth.PasswordHasher
	passwordVerify auth.PasswordVerifier
	google         *auth.GoogleProvider
	logger         *slog.Logger
	secureCookies  bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	userStore store.UserStore,
	jwtService auth.JWTService,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	google *auth.GoogleProvider,
	logger *slog.Logger,
	secureCookies bool,
) *AuthHandler {
	return &AuthHandler{
		userStore:      userStore,
		jwtService:     jwtService,
		passwordHasher: hasher,
		passwordVerify: verifier,
		google:         google,
		logger:         logger.With(slog.String("component", "auth_handler")),
		secureCookies:  secureCookies,
	}
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Validated[RegisterRequest](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	user, err := domain.NewUser(req.Email, req.Name, req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request", err)
		return
	}

	hashed, err := h.passwordHasher.Hash(req.Password)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"An internal error occurred", err)
		return
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := h.userStore.Create(r.Context(), user); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"An internal error occurred", err)
		return
	}

	h.logger.Info("user registered", "user_id", user.ID)
	shared.Respond(w, r, http.StatusCreated, shared.Envelope{
		Message: "User registered successfully",
		User:    user.Public(),
		Token:   token,
	})
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.Validated[LoginRequest](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	user, err := h.userStore.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			err = auth.ErrInvalidCredentials
		}
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Google-only identities carry no password hash; they cannot log in with
	// credentials and must not be distinguishable from a wrong password.
	if user.HashedPassword == "" {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			GetSafeErrorMessage(auth.ErrInvalidCredentials), auth.ErrInvalidCredentials)
		return
	}

	if err := h.passwordVerify.Compare(user.HashedPassword, req.Password); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			GetSafeErrorMessage(auth.ErrInvalidCredentials), auth.ErrInvalidCredentials)
		return
	}

	if !user.IsActive {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"Account has been deactivated. Please contact support.")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"An internal error occurred", err)
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID)
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Login successful",
		User:    user.Public(),
		Token:   token,
	})
}

// Logout handles POST /auth/logout. Tokens are stateless, so logout is a
// client-side discard; the endpoint exists so clients have a uniform flow.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Logged out successfully",
	})
}

// GetProfile handles GET /auth/profile.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	shared.Respond(w, r, http.StatusOK, shared.Envelope{User: user.Public()})
}

// UpdateProfile handles PUT /auth/profile.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, ok := shared.Validated[UpdateProfileRequest](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	// The context user has its credentials stripped; load the stored record
	// so the update never persists an empty hash.
	stored, err := h.userStore.GetByID(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if req.Email != nil && *req.Email != stored.Email {
		existing, err := h.userStore.GetByEmail(r.Context(), *req.Email)
		if err == nil && existing.ID != stored.ID {
			shared.RespondWithErrorAndLog(w, r, http.StatusConflict,
				GetSafeErrorMessage(store.ErrEmailExists), store.ErrEmailExists)
			return
		}
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
				"An internal error occurred", err)
			return
		}
		stored.Email = *req.Email
	}
	if req.Name != nil {
		stored.Name = *req.Name
	}
	stored.UpdatedAt = time.Now().UTC()

	if err := h.userStore.Update(r.Context(), stored); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("profile updated", "user_id", stored.ID)
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Profile updated successfully",
		User:    stored.Public(),
	})
}

// ChangePassword handles PUT /auth/change-password.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	req, ok := shared.Validated[ChangePasswordRequest](r.Context())
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "An internal error occurred")
		return
	}

	// The context user has its credentials stripped; the stored hash is
	// needed for comparison.
	stored, err := h.userStore.GetByID(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if stored.HashedPassword == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Password cannot be changed for accounts without a password")
		return
	}

	if err := h.passwordVerify.Compare(stored.HashedPassword, req.CurrentPassword); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Current password is incorrect")
		return
	}

	hashed, err := h.passwordHasher.Hash(req.NewPassword)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"An internal error occurred", err)
		return
	}
	stored.HashedPassword = hashed
	stored.UpdatedAt = time.Now().UTC()

	if err := h.userStore.Update(r.Context(), stored); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	h.logger.Info("password changed", "user_id", stored.ID)
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Password changed successfully",
	})
}

// GoogleRedirect handles GET /auth/google. It stashes an anti-forgery state
// in a short-lived cookie and redirects to the provider consent page.
func (h *AuthHandler) GoogleRedirect(w http.ResponseWriter, r *http.Request) {
	state, err := randomState()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"An internal error occurred", err)
		return
	}

	url, err := h.google.AuthCodeURL(state)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, url, http.StatusFound)
}

// GoogleCallback handles GET /auth/google/callback. It verifies the state,
// exchanges the authorization code, resolves the Google profile to a local
// identity, and issues a session token.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if !h.google.Configured() {
		err := auth.ErrProviderNotConfigured
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	state := r.URL.Query().Get("state")
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || state == "" || cookie.Value != state {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid OAuth state")
		return
	}

	// The state is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	code := r.URL.Query().Get("code")
	if code == "" {
		shared.RespondWithFieldErrors(w, r, http.StatusBadRequest, "Validation failed",
			[]shared.FieldError{{Field: "code", Message: "is required"}})
		return
	}

	profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusUnauthorized,
			"Google authentication failed", err)
		return
	}

	user, err := h.google.ResolveUser(r.Context(), profile)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	if !user.IsActive {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			"Account has been deactivated. Please contact support.")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), user.ID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"An internal error occurred", err)
		return
	}

	h.logger.Info("user logged in via Google", "user_id", user.ID)
	shared.Respond(w, r, http.StatusOK, shared.Envelope{
		Message: "Login successful",
		User:    user.Public(),
		Token:   token,
	})
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
