// Package services implements the gallery's business operations: session
// lifecycle, the OAuth login flow and folder traversal.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ericfisherdev/dropgallery/internal/domain"
	"github.com/ericfisherdev/dropgallery/internal/repository"
)

// SessionCookieConfig defines how the session cookie is written
type SessionCookieConfig struct {
	// Name is the cookie name
	Name string
	// MaxAge is the cookie lifetime in seconds
	MaxAge int
	// Secure restricts the cookie to HTTPS
	Secure bool
}

// DefaultSessionCookieConfig returns the cookie settings used outside of tests.
func DefaultSessionCookieConfig(secure bool) SessionCookieConfig {
	return SessionCookieConfig{
		Name:   "gallery_session",
		MaxAge: 86400,
		Secure: secure,
	}
}

// SessionManager owns the browser session lifecycle: resolution from the
// cookie, regeneration at privilege escalation and destruction at logout.
type SessionManager struct {
	sessions repository.SessionRepository
	cookie   SessionCookieConfig
}

// NewSessionManager creates a new session manager.
func NewSessionManager(sessions repository.SessionRepository, cookie SessionCookieConfig) *SessionManager {
	return &SessionManager{
		sessions: sessions,
		cookie:   cookie,
	}
}

// Current resolves the request's session from the cookie. A missing or
// stale cookie yields a fresh anonymous session, persisted and written back.
func (m *SessionManager) Current(c *gin.Context) (*domain.Session, error) {
	if id, err := c.Cookie(m.cookie.Name); err == nil && id != "" {
		session, err := m.sessions.GetByID(c.Request.Context(), id)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, repository.ErrSessionNotFound) {
			return nil, domain.NewSessionError("SESSION_LOOKUP_FAILED", "Could not load session", err)
		}
	}
	return m.create(c)
}

// Regenerate atomically replaces the session's identifier: the session data
// is persisted under a new ID, the old ID is invalidated and the cookie is
// rewritten. It completes before the caller writes any state into the new
// session, so nothing can land on the pre-regeneration identifier.
func (m *SessionManager) Regenerate(c *gin.Context, session *domain.Session) (*domain.Session, error) {
	ctx := c.Request.Context()

	regenerated := &domain.Session{
		ID:          uuid.New().String(),
		AccessToken: session.AccessToken,
		CreatedAt:   time.Now(),
	}
	if err := m.sessions.Create(ctx, regenerated); err != nil {
		return nil, domain.NewSessionError("SESSION_REGENERATE_FAILED", "Could not regenerate session", err)
	}
	if err := m.sessions.Delete(ctx, session.ID); err != nil {
		return nil, domain.NewSessionError("SESSION_REGENERATE_FAILED", "Could not invalidate previous session", err)
	}

	m.writeCookie(c, regenerated.ID, m.cookie.MaxAge)
	return regenerated, nil
}

// Save persists updated session state under its current identifier.
func (m *SessionManager) Save(ctx context.Context, session *domain.Session) error {
	if err := m.sessions.Update(ctx, session); err != nil {
		return domain.NewSessionError("SESSION_SAVE_FAILED", "Could not save session", err)
	}
	return nil
}

// Destroy invalidates the session so subsequent lookups by its ID fail and
// expires the cookie.
func (m *SessionManager) Destroy(c *gin.Context, session *domain.Session) error {
	if err := m.sessions.Delete(c.Request.Context(), session.ID); err != nil {
		return domain.NewSessionError("SESSION_DESTROY_FAILED", "Could not destroy session", err)
	}

	m.writeCookie(c, "", -1)
	return nil
}

func (m *SessionManager) create(c *gin.Context) (*domain.Session, error) {
	session := &domain.Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now(),
	}
	if err := m.sessions.Create(c.Request.Context(), session); err != nil {
		return nil, domain.NewSessionError("SESSION_CREATE_FAILED", "Could not create session", err)
	}

	m.writeCookie(c, session.ID, m.cookie.MaxAge)
	return session, nil
}

func (m *SessionManager) writeCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, value, maxAge, "/", "", m.cookie.Secure, true)
}
