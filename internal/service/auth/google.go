package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/libris-project/libris-api/internal/config"
	"github.com/libris-project/libris-api/internal/domain"
	"github.com/libris-project/libris-api/internal/platform/logger"
	"github.com/libris-project/libris-api/internal/store"
)

// googleUserInfoURL is the OpenID userinfo endpoint queried with the
// exchanged access token.
const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProfile is the subset of the provider's userinfo response we use.
type GoogleProfile struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Name   string `json:"name"`
	Avatar string `json:"picture"`
}

// GoogleProvider completes the Google OAuth handshake and resolves the
// resulting profile to a local identity.
//
// Resolution order: by linked Google ID, then by email (linking the Google
// account to the existing identity without touching its password), then a
// new passwordless identity is created.
type GoogleProvider struct {
	oauth       *oauth2.Config
	userStore   store.UserStore
	userInfoURL string
}

// NewGoogleProvider creates a GoogleProvider from configuration. When the
// client credentials are absent the provider is returned unconfigured and
// every operation fails with ErrProviderNotConfigured.
func NewGoogleProvider(cfg config.GoogleConfig, userStore store.UserStore) *GoogleProvider {
	p := &GoogleProvider{
		userStore:   userStore,
		userInfoURL: googleUserInfoURL,
	}
	if cfg.Configured() {
		p.oauth = &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.CallbackURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"profile", "email"},
		}
	}
	return p
}

// Configured reports whether the provider holds client credentials.
func (p *GoogleProvider) Configured() bool {
	return p.oauth != nil
}

// AuthCodeURL returns the provider consent page URL for the given state.
func (p *GoogleProvider) AuthCodeURL(state string) (string, error) {
	if !p.Configured() {
		return "", ErrProviderNotConfigured
	}
	return p.oauth.AuthCodeURL(state), nil
}

// Exchange trades the callback code for a token and fetches the user's
// profile from the userinfo endpoint.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	if !p.Configured() {
		return nil, ErrProviderNotConfigured
	}

	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build userinfo request: %w", err)
	}

	resp, err := p.oauth.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch userinfo: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed to decode userinfo response: %w", err)
	}
	if profile.ID == "" || profile.Email == "" {
		return nil, fmt.Errorf("userinfo response missing id or email")
	}

	return &profile, nil
}

// ResolveUser maps a provider profile to a local identity, creating or
// linking as needed. The returned user always satisfies the credential
// invariant: either a password hash or a Google ID is present.
func (p *GoogleProvider) ResolveUser(
	ctx context.Context,
	profile *GoogleProfile,
) (*domain.User, error) {
	log := logger.FromContext(ctx)

	user, err := p.userStore.GetByGoogleID(ctx, profile.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	// No identity linked to this Google account yet; try to link by email.
	user, err = p.userStore.GetByEmail(ctx, profile.Email)
	if err == nil {
		user.GoogleID = profile.ID
		if user.Avatar == "" {
			user.Avatar = profile.Avatar
		}
		user.UpdatedAt = time.Now().UTC()
		if err := p.userStore.Update(ctx, user); err != nil {
			return nil, err
		}
		log.Info("linked Google account to existing user", "user_id", user.ID)
		return user, nil
	}
	if !errors.Is(err, store.ErrUserNotFound) {
		return nil, err
	}

	user, err = domain.NewGoogleUser(profile.ID, profile.Email, profile.Name, profile.Avatar)
	if err != nil {
		return nil, err
	}
	if err := p.userStore.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Info("created new user from Google profile", "user_id", user.ID)
	return user, nil
}
