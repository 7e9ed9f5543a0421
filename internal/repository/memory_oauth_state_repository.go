package repository

import (
	"context"
	"sync"
	"time"

	"github.com/ericfisherdev/dropgallery/internal/domain"
)

// memoryOAuthStateRepository provides an in-memory implementation of
// OAuthStateRepository. The clock is injected so tests control expiry.
type memoryOAuthStateRepository struct {
	states map[string]*domain.OAuthState
	now    func() time.Time
	mutex  sync.RWMutex
}

// NewMemoryOAuthStateRepository creates a new in-memory OAuth state repository.
func NewMemoryOAuthStateRepository(now func() time.Time) OAuthStateRepository {
	if now == nil {
		now = time.Now
	}
	return &memoryOAuthStateRepository{
		states: make(map[string]*domain.OAuthState),
		now:    now,
	}
}

// Create stores a new anti-forgery state entry
func (r *memoryOAuthStateRepository) Create(_ context.Context, state *domain.OAuthState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.states[state.State] = state
	return nil
}

// GetByState retrieves a state entry. Expired entries behave exactly like
// entries that never existed.
func (r *memoryOAuthStateRepository) GetByState(_ context.Context, state string) (*domain.OAuthState, error) {
	r.mutex.RLock()
	entry, exists := r.states[state]
	r.mutex.RUnlock()

	if !exists || entry.IsExpired(r.now()) {
		return nil, ErrStateNotFound
	}
	return entry, nil
}

// DeleteByState removes a state entry
func (r *memoryOAuthStateRepository) DeleteByState(_ context.Context, state string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.states, state)
	return nil
}

// CleanupExpired removes all expired state entries
func (r *memoryOAuthStateRepository) CleanupExpired(_ context.Context) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	now := r.now()
	for key, entry := range r.states {
		if entry.IsExpired(now) {
			delete(r.states, key)
		}
	}
	return nil
}
