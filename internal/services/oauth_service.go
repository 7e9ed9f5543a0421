package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/ericfisherdev/dropgallery/internal/domain"
	"github.com/ericfisherdev/dropgallery/internal/repository"
)

// ErrCallbackIncomplete is returned when the provider callback carries
// neither a code nor an error description. The handler redirects such
// requests back to the login entry point.
var ErrCallbackIncomplete = domain.NewOAuthError(
	"OAUTH_CALLBACK_INCOMPLETE", "Login was not completed", nil,
)

// TokenRevoker invalidates an access token at the provider
type TokenRevoker interface {
	RevokeToken(ctx context.Context, token string) error
}

// OAuthConfig defines the configuration for the OAuth flow controller
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// Endpoint overrides the provider endpoints, used by tests.
	// The zero value means Dropbox.
	Endpoint oauth2.Endpoint
	// StateTTL is the absolute lifetime of an anti-forgery state token.
	// The zero value means 10 minutes.
	StateTTL time.Duration
}

// OAuthService drives the authorization-code flow: it issues the redirect
// to the provider and consumes the callback. Each login attempt is guarded
// by a single-use anti-forgery state token bound to the session that
// initiated it.
type OAuthService struct {
	config   *oauth2.Config
	states   repository.OAuthStateRepository
	revoker  TokenRevoker
	stateTTL time.Duration
	logger   *slog.Logger
}

// CallbackRequest contains the query parameters of the provider callback
type CallbackRequest struct {
	Code             string
	State            string
	ErrorDescription string
}

// NewOAuthService creates a new OAuth flow controller.
func NewOAuthService(
	cfg OAuthConfig,
	states repository.OAuthStateRepository,
	revoker TokenRevoker,
	logger *slog.Logger,
) *OAuthService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = endpoints.Dropbox
	}
	ttl := cfg.StateTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &OAuthService{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
		},
		states:   states,
		revoker:  revoker,
		stateTTL: ttl,
		logger:   logger,
	}
}

// BeginLogin starts a login attempt for the given session: it generates a
// random state token, stores it bound to the session identifier and returns
// the provider authorization URL to redirect the browser to.
func (s *OAuthService) BeginLogin(ctx context.Context, sessionID string) (string, error) {
	state, err := generateState()
	if err != nil {
		return "", domain.NewOAuthError("OAUTH_STATE_GENERATION_FAILED", "Could not start login", err)
	}

	now := time.Now()
	entry := &domain.OAuthState{
		State:     state,
		SessionID: sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.stateTTL),
	}
	if err := s.states.Create(ctx, entry); err != nil {
		return "", domain.NewOAuthError("OAUTH_STATE_STORE_FAILED", "Could not start login", err)
	}

	return s.config.AuthCodeURL(state), nil
}

// HandleCallback consumes the provider callback for the given session and
// returns the exchanged access token. The state token must have been issued
// for exactly this session and still be alive; it is deleted once validated.
func (s *OAuthService) HandleCallback(ctx context.Context, sessionID string, req CallbackRequest) (string, error) {
	if req.ErrorDescription != "" {
		s.logger.WarnContext(ctx, "provider rejected login",
			slog.String("error_description", req.ErrorDescription))
		return "", domain.NewOAuthError("OAUTH_PROVIDER_REJECTED",
			"The provider rejected the login request", errors.New(req.ErrorDescription))
	}

	stored, err := s.states.GetByState(ctx, req.State)
	if err != nil || stored.SessionID != sessionID {
		// Absent, expired, tampered and mismatched states all fail the
		// same way so a forged callback learns nothing.
		return "", domain.NewOAuthError("OAUTH_INVALID_STATE", "invalid or expired state", err)
	}
	if err := s.states.DeleteByState(ctx, req.State); err != nil {
		s.logger.WarnContext(ctx, "failed to delete used oauth state", slog.String("error", err.Error()))
	}

	if req.Code == "" {
		return "", ErrCallbackIncomplete
	}

	token, err := s.config.Exchange(ctx, req.Code)
	if err != nil {
		return "", domain.NewOAuthError("OAUTH_EXCHANGE_FAILED",
			"Could not complete login with the provider", err)
	}
	return token.AccessToken, nil
}

// Revoke invalidates the access token at the provider. Callers treat a
// failure as a warning: the local session is torn down regardless.
func (s *OAuthService) Revoke(ctx context.Context, token string) error {
	if err := s.revoker.RevokeToken(ctx, token); err != nil {
		return fmt.Errorf("token revocation failed: %w", err)
	}
	return nil
}

// generateState generates a cryptographically random anti-forgery token
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
