package repository

import (
	"context"
	"sync"

	"github.com/ericfisherdev/dropgallery/internal/domain"
)

// memorySessionRepository provides an in-memory implementation of
// SessionRepository, suitable for development and tests.
type memorySessionRepository struct {
	sessions map[string]*domain.Session
	mutex    sync.RWMutex
}

// NewMemorySessionRepository creates a new in-memory session repository.
func NewMemorySessionRepository() SessionRepository {
	return &memorySessionRepository{
		sessions: make(map[string]*domain.Session),
	}
}

// Create stores a new session
func (r *memorySessionRepository) Create(_ context.Context, session *domain.Session) error {
	if session.ID == "" {
		return domain.NewValidationError("id", "Session ID is required", nil)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

// GetByID retrieves a session by its ID
func (r *memorySessionRepository) GetByID(_ context.Context, id string) (*domain.Session, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	session, exists := r.sessions[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	copied := *session
	return &copied, nil
}

// Update replaces a stored session
func (r *memorySessionRepository) Update(_ context.Context, session *domain.Session) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.sessions[session.ID]; !exists {
		return ErrSessionNotFound
	}

	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

// Delete removes a session so that subsequent lookups by this ID fail
func (r *memorySessionRepository) Delete(_ context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.sessions, id)
	return nil
}
