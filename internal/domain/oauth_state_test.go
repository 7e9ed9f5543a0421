package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuthStateValidate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		state := &OAuthState{State: "abc123", SessionID: "session-1"}
		require.NoError(t, state.Validate())
	})

	t.Run("MissingState", func(t *testing.T) {
		state := &OAuthState{SessionID: "session-1"}
		assert.Error(t, state.Validate())
	})

	t.Run("MissingSessionID", func(t *testing.T) {
		state := &OAuthState{State: "abc123"}
		assert.Error(t, state.Validate())
	})
}

func TestOAuthStateIsExpired(t *testing.T) {
	now := time.Now()
	state := &OAuthState{
		State:     "abc123",
		SessionID: "session-1",
		CreatedAt: now,
		ExpiresAt: now.Add(600 * time.Second),
	}

	assert.False(t, state.IsExpired(now))
	assert.False(t, state.IsExpired(now.Add(599*time.Second)))
	assert.True(t, state.IsExpired(now.Add(601*time.Second)))
}
