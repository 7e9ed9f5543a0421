package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/dropgallery/internal/domain"
)

func TestMemorySessionRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("CreateAndGet", func(t *testing.T) {
		repo := NewMemorySessionRepository()

		session := &domain.Session{ID: "session-1", CreatedAt: time.Now()}
		require.NoError(t, repo.Create(ctx, session))

		retrieved, err := repo.GetByID(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, session.ID, retrieved.ID)
	})

	t.Run("CreateRequiresID", func(t *testing.T) {
		repo := NewMemorySessionRepository()
		assert.Error(t, repo.Create(ctx, &domain.Session{}))
	})

	t.Run("GetNonExistent", func(t *testing.T) {
		repo := NewMemorySessionRepository()
		_, err := repo.GetByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("UpdateStoresToken", func(t *testing.T) {
		repo := NewMemorySessionRepository()

		session := &domain.Session{ID: "session-1", CreatedAt: time.Now()}
		require.NoError(t, repo.Create(ctx, session))

		session.AccessToken = "provider-token"
		require.NoError(t, repo.Update(ctx, session))

		retrieved, err := repo.GetByID(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, "provider-token", retrieved.AccessToken)
	})

	t.Run("UpdateMissingSession", func(t *testing.T) {
		repo := NewMemorySessionRepository()
		err := repo.Update(ctx, &domain.Session{ID: "missing"})
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("DeleteInvalidatesID", func(t *testing.T) {
		repo := NewMemorySessionRepository()

		require.NoError(t, repo.Create(ctx, &domain.Session{ID: "session-1", CreatedAt: time.Now()}))
		require.NoError(t, repo.Delete(ctx, "session-1"))

		_, err := repo.GetByID(ctx, "session-1")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("ReturnsCopies", func(t *testing.T) {
		repo := NewMemorySessionRepository()

		require.NoError(t, repo.Create(ctx, &domain.Session{ID: "session-1", CreatedAt: time.Now()}))

		first, err := repo.GetByID(ctx, "session-1")
		require.NoError(t, err)
		first.AccessToken = "mutated"

		second, err := repo.GetByID(ctx, "session-1")
		require.NoError(t, err)
		assert.Empty(t, second.AccessToken)
	})
}
