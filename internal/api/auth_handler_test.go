package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/libris-project/libris-api/internal/api/middleware"
	"github.com/libris-project/libris-api/internal/api/shared"
	"github.com/libris-project/libris-api/internal/config"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/mocks"
	"github.com/libris-project/libris-api/internal/service/auth"
	"github.com/libris-project/libris-api/internal/store"
)

// injectUser is a stand-in for the auth middleware that attaches a
// credential-stripped user to the request context.
func injectUser(user *domain.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			view := *user
			view.Password = ""
			view.HashedPassword = ""
			ctx := context.WithValue(r.Context(), shared.UserContextKey, &view)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func newAuthRouter(
	userStore store.UserStore,
	verifier *mocks.MockPasswordVerifier,
	authn func(http.Handler) http.Handler,
) http.Handler {
	google := auth.NewGoogleProvider(config.GoogleConfig{}, userStore)
	h := NewAuthHandler(
		userStore,
		&mocks.MockJWTService{Token: "issued-token"},
		verifier,
		verifier,
		google,
		testLogger(),
		false,
	)
	v := shared.NewValidator()

	r := chi.NewRouter()
	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.ValidateBody[RegisterRequest](v)).Post("/register", h.Register)
		r.With(middleware.ValidateBody[LoginRequest](v)).Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/google", h.GoogleRedirect)
		r.Get("/google/callback", h.GoogleCallback)

		if authn != nil {
			r.With(authn).Get("/me", h.GetProfile)
			r.With(middleware.ValidateBody[UpdateProfileRequest](v), authn).
				Put("/me", h.UpdateProfile)
			r.With(middleware.ValidateBody[ChangePasswordRequest](v), authn).
				Put("/change-password", h.ChangePassword)
		}
	})
	return r
}

func registeredUser(t *testing.T) *domain.User {
	t.Helper()
	user, err := domain.NewUser("reader@example.com", "Reader", "password123")
	require.NoError(t, err)
	user.HashedPassword = "hashed:password123"
	user.Password = ""
	return user
}

func TestAuthHandlerRegister(t *testing.T) {
	t.Parallel()

	payload := `{
		"name": "Reader",
		"email": "reader@example.com",
		"password": "password123",
		"confirmPassword": "password123"
	}`

	t.Run("registers and issues token", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore()
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusCreated, w.Code)

		var body struct {
			Success bool              `json:"success"`
			Message string            `json:"message"`
			Token   string            `json:"token"`
			User    domain.PublicUser `json:"user"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "issued-token", body.Token)
		assert.Equal(t, "reader@example.com", body.User.Email)
		assert.Equal(t, domain.RoleUser, body.User.Role)

		stored, err := userStore.GetByEmail(context.Background(), "reader@example.com")
		require.NoError(t, err)
		assert.Equal(t, "hashed:password123", stored.HashedPassword)
		assert.Empty(t, stored.Password, "plaintext must not be retained")
	})

	t.Run("duplicate email returns 409", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore(registeredUser(t))
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Email already in use", body.Message)
	})

	t.Run("password mismatch returns 400", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(mocks.NewMockUserStore(), &mocks.MockPasswordVerifier{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{
			"name": "Reader",
			"email": "reader@example.com",
			"password": "password123",
			"confirmPassword": "password456"
		}`))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	t.Parallel()

	payload := `{"email": "reader@example.com", "password": "password123"}`

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore(registeredUser(t))
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var body struct {
			Success bool   `json:"success"`
			Token   string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, "issued-token", body.Token)
	})

	t.Run("unknown email returns 401", func(t *testing.T) {
		t.Parallel()
		router := newAuthRouter(mocks.NewMockUserStore(), &mocks.MockPasswordVerifier{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Invalid credentials", body.Message)
	})

	t.Run("wrong password returns same message", func(t *testing.T) {
		t.Parallel()
		userStore := mocks.NewMockUserStore(registeredUser(t))
		verifier := &mocks.MockPasswordVerifier{CompareErr: auth.ErrInvalidCredentials}
		router := newAuthRouter(userStore, verifier, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Invalid credentials", body.Message)
	})

	t.Run("google-only account cannot use password login", func(t *testing.T) {
		t.Parallel()
		googleUser, err := domain.NewGoogleUser("google-123", "reader@example.com", "Reader", "")
		require.NoError(t, err)
		userStore := mocks.NewMockUserStore(googleUser)
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Invalid credentials", body.Message)
	})

	t.Run("deactivated account returns 401", func(t *testing.T) {
		t.Parallel()
		user := registeredUser(t)
		user.IsActive = false
		userStore := mocks.NewMockUserStore(user)
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, nil)

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Account has been deactivated. Please contact support.", body.Message)
	})
}

func TestAuthHandlerLogout(t *testing.T) {
	t.Parallel()

	router := newAuthRouter(mocks.NewMockUserStore(), &mocks.MockPasswordVerifier{}, nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var body shared.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Logged out successfully", body.Message)
}

func TestAuthHandlerProfile(t *testing.T) {
	t.Parallel()

	t.Run("returns public view", func(t *testing.T) {
		t.Parallel()
		user := registeredUser(t)
		userStore := mocks.NewMockUserStore(user)
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, injectUser(user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		var raw map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
		userBody, ok := raw["user"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "reader@example.com", userBody["email"])
		assert.NotContains(t, userBody, "password")
		assert.NotContains(t, userBody, "hashedPassword")
	})

	t.Run("update keeps stored credential", func(t *testing.T) {
		t.Parallel()
		user := registeredUser(t)
		userStore := mocks.NewMockUserStore(user)
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, injectUser(user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/auth/me",
			strings.NewReader(`{"name": "New Name"}`))
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		stored, err := userStore.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "New Name", stored.Name)
		assert.Equal(t, "hashed:password123", stored.HashedPassword,
			"profile update must not clear the stored hash")
	})

	t.Run("email conflict returns 409", func(t *testing.T) {
		t.Parallel()
		user := registeredUser(t)
		other, err := domain.NewUser("other@example.com", "Other", "password123")
		require.NoError(t, err)
		other.HashedPassword = "hash"
		userStore := mocks.NewMockUserStore(user, other)
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, injectUser(user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/auth/me",
			strings.NewReader(`{"email": "other@example.com"}`))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestAuthHandlerChangePassword(t *testing.T) {
	t.Parallel()

	payload := `{"currentPassword": "password123", "newPassword": "newpassword456"}`

	t.Run("changes stored hash", func(t *testing.T) {
		t.Parallel()
		user := registeredUser(t)
		userStore := mocks.NewMockUserStore(user)
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, injectUser(user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/auth/change-password", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		require.Equal(t, http.StatusOK, w.Code)

		stored, err := userStore.GetByID(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, "hashed:newpassword456", stored.HashedPassword)
	})

	t.Run("wrong current password returns 401", func(t *testing.T) {
		t.Parallel()
		user := registeredUser(t)
		userStore := mocks.NewMockUserStore(user)
		verifier := &mocks.MockPasswordVerifier{CompareErr: auth.ErrInvalidCredentials}
		router := newAuthRouter(userStore, verifier, injectUser(user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/auth/change-password", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Current password is incorrect", body.Message)
	})

	t.Run("google-only account returns 400", func(t *testing.T) {
		t.Parallel()
		googleUser, err := domain.NewGoogleUser("google-123", "reader@example.com", "Reader", "")
		require.NoError(t, err)
		userStore := mocks.NewMockUserStore(googleUser)
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, injectUser(googleUser))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/auth/change-password", strings.NewReader(payload))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("short new password rejected", func(t *testing.T) {
		t.Parallel()
		user := registeredUser(t)
		userStore := mocks.NewMockUserStore(user)
		router := newAuthRouter(userStore, &mocks.MockPasswordVerifier{}, injectUser(user))

		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPut, "/auth/change-password",
			strings.NewReader(`{"currentPassword": "password123", "newPassword": "short"}`))
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthHandlerGoogle_NotConfigured(t *testing.T) {
	t.Parallel()

	router := newAuthRouter(mocks.NewMockUserStore(), &mocks.MockPasswordVerifier{}, nil)

	t.Run("redirect returns 501", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/auth/google", nil)
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotImplemented, w.Code)

		var body shared.Envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, "Google authentication is not configured", body.Message)
	})

	t.Run("callback returns 501", func(t *testing.T) {
		t.Parallel()
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/auth/google/callback?code=abc&state=xyz", nil)
		router.ServeHTTP(w, r)

		assert.Equal(t, http.StatusNotImplemented, w.Code)
	})
}
