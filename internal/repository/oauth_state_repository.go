// Package repository provides data access interfaces and their in-memory
// and redis-backed implementations.
package repository

import (
	"context"
	"errors"

	"github.com/ericfisherdev/dropgallery/internal/domain"
)

// ErrStateNotFound is returned for any state token that cannot be used:
// never stored, expired or tampered. Callers must not be able to tell these
// cases apart.
var ErrStateNotFound = errors.New("oauth state not found")

// ErrSessionNotFound is returned when a session ID resolves to nothing,
// whether it never existed, expired or was destroyed.
var ErrSessionNotFound = errors.New("session not found")

// OAuthStateRepository stores anti-forgery state tokens for the lifetime of
// one login attempt. Entries become unreadable once their TTL elapses.
type OAuthStateRepository interface {
	Create(ctx context.Context, state *domain.OAuthState) error
	GetByState(ctx context.Context, state string) (*domain.OAuthState, error)
	DeleteByState(ctx context.Context, state string) error
	CleanupExpired(ctx context.Context) error
}
