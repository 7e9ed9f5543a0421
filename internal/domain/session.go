package domain

import (
	"time"
)

// Session represents a browser session stored server-side. The access token
// is present only after a successful OAuth exchange and is never serialized.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Authenticated reports whether the session carries an access credential
func (s *Session) Authenticated() bool {
	return s.AccessToken != ""
}
