package domain

import (
	"time"
)

// OAuthState represents an anti-forgery state token stored server-side for
// the lifetime of one login attempt. The token binds the authorization
// redirect to the browser session that initiated it: the callback is only
// accepted when the stored SessionID matches the session presenting it.
type OAuthState struct {
	State     string    `json:"state"`
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Validate validates the OAuthState
func (s *OAuthState) Validate() error {
	if s.State == "" {
		return NewValidationError("state", "State token is required", nil)
	}
	if s.SessionID == "" {
		return NewValidationError("session_id", "Session ID is required", nil)
	}
	return nil
}

// IsExpired checks if the state token has expired at the given instant
func (s *OAuthState) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
