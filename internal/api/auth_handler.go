package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ericfisherdev/dropgallery/internal/services"
)

// AuthHandler handles the OAuth login flow and logout
type AuthHandler struct {
	oauthService   *services.OAuthService
	sessionManager *services.SessionManager
	errorRenderer  *ErrorRenderer
	logger         *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(
	oauthService *services.OAuthService,
	sessionManager *services.SessionManager,
	errorRenderer *ErrorRenderer,
	logger *slog.Logger,
) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		oauthService:   oauthService,
		sessionManager: sessionManager,
		errorRenderer:  errorRenderer,
		logger:         logger,
	}
}

// Login begins the OAuth flow: it binds a fresh anti-forgery state token to
// the current session and redirects the browser to the provider.
func (h *AuthHandler) Login(c *gin.Context) {
	session, err := h.sessionManager.Current(c)
	if err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	authURL, err := h.oauthService.BeginLogin(c.Request.Context(), session.ID)
	if err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	c.Redirect(http.StatusFound, authURL)
}

// OAuthRedirect consumes the provider callback. On a successful exchange the
// session is regenerated BEFORE the token is stored, so the pre-auth session
// identifier never carries post-auth privilege.
func (h *AuthHandler) OAuthRedirect(c *gin.Context) {
	session, err := h.sessionManager.Current(c)
	if err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	token, err := h.oauthService.HandleCallback(c.Request.Context(), session.ID, services.CallbackRequest{
		Code:             c.Query("code"),
		State:            c.Query("state"),
		ErrorDescription: c.Query("error_description"),
	})
	if errors.Is(err, services.ErrCallbackIncomplete) {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	if err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	session, err = h.sessionManager.Regenerate(c, session)
	if err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	session.AccessToken = token
	if err := h.sessionManager.Save(c.Request.Context(), session); err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout revokes the access token at the provider and destroys the local
// session. A failed revocation is logged as a warning and never blocks the
// local teardown.
func (h *AuthHandler) Logout(c *gin.Context) {
	session, err := h.sessionManager.Current(c)
	if err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	if session.Authenticated() {
		if err := h.oauthService.Revoke(c.Request.Context(), session.AccessToken); err != nil {
			h.logger.WarnContext(c.Request.Context(), "token revocation failed",
				slog.String("session_id", session.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := h.sessionManager.Destroy(c, session); err != nil {
		h.errorRenderer.Render(c, err)
		return
	}

	c.Redirect(http.StatusFound, "/login")
}
