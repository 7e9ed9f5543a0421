package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ericfisherdev/dropgallery/internal/domain"
)

const sessionKeyPrefix = "session:"

// sessionRecord is the redis payload for a session. domain.Session excludes
// the access token from JSON, so it is carried explicitly here; this struct
// never leaves the repository.
type sessionRecord struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	CreatedAt   time.Time `json:"created_at"`
}

// redisSessionRepository provides a redis-backed implementation of
// SessionRepository with a sliding absolute TTL per session.
type redisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionRepository creates a new redis session repository.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration) SessionRepository {
	return &redisSessionRepository{client: client, ttl: ttl}
}

// Create stores a new session
func (r *redisSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	if session.ID == "" {
		return domain.NewValidationError("id", "Session ID is required", nil)
	}
	return r.set(ctx, session)
}

// GetByID retrieves a session by its ID
func (r *redisSessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	payload, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to fetch session: %w", err)
	}

	var record sessionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, ErrSessionNotFound
	}
	return &domain.Session{
		ID:          record.ID,
		AccessToken: record.AccessToken,
		CreatedAt:   record.CreatedAt,
	}, nil
}

// Update replaces a stored session
func (r *redisSessionRepository) Update(ctx context.Context, session *domain.Session) error {
	exists, err := r.client.Exists(ctx, sessionKeyPrefix+session.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return ErrSessionNotFound
	}
	return r.set(ctx, session)
}

// Delete removes a session so that subsequent lookups by this ID fail
func (r *redisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *redisSessionRepository) set(ctx context.Context, session *domain.Session) error {
	payload, err := json.Marshal(sessionRecord{
		ID:          session.ID,
		AccessToken: session.AccessToken,
		CreatedAt:   session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := r.client.Set(ctx, sessionKeyPrefix+session.ID, payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}
