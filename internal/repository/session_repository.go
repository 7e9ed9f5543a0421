package repository

import (
	"context"

	"github.com/ericfisherdev/dropgallery/internal/domain"
)

// SessionRepository stores browser sessions keyed by their opaque ID.
// Implementations must be safe under concurrent requests; unrelated session
// IDs are independent keys with no cross-key ordering guarantee.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Update(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
}
