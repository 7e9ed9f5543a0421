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

const oauthStateKeyPrefix = "oauth_state:"

// redisOAuthStateRepository provides a redis-backed implementation of
// OAuthStateRepository. Redis owns expiry via the key TTL, so expired
// entries are absent by construction.
type redisOAuthStateRepository struct {
	client *redis.Client
}

// NewRedisOAuthStateRepository creates a new redis OAuth state repository.
func NewRedisOAuthStateRepository(client *redis.Client) OAuthStateRepository {
	return &redisOAuthStateRepository{client: client}
}

// Create stores a new anti-forgery state entry with its remaining TTL
func (r *redisOAuthStateRepository) Create(ctx context.Context, state *domain.OAuthState) error {
	if err := state.Validate(); err != nil {
		return err
	}

	ttl := time.Until(state.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("oauth state already expired")
	}

	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal oauth state: %w", err)
	}

	if err := r.client.Set(ctx, oauthStateKeyPrefix+state.State, payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store oauth state: %w", err)
	}
	return nil
}

// GetByState retrieves a state entry. Missing and expired keys are
// indistinguishable.
func (r *redisOAuthStateRepository) GetByState(ctx context.Context, state string) (*domain.OAuthState, error) {
	payload, err := r.client.Get(ctx, oauthStateKeyPrefix+state).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("failed to fetch oauth state: %w", err)
	}

	var entry domain.OAuthState
	if err := json.Unmarshal(payload, &entry); err != nil {
		return nil, ErrStateNotFound
	}
	return &entry, nil
}

// DeleteByState removes a state entry
func (r *redisOAuthStateRepository) DeleteByState(ctx context.Context, state string) error {
	if err := r.client.Del(ctx, oauthStateKeyPrefix+state).Err(); err != nil {
		return fmt.Errorf("failed to delete oauth state: %w", err)
	}
	return nil
}

// CleanupExpired is a no-op for redis: key TTLs already evict expired entries
func (r *redisOAuthStateRepository) CleanupExpired(_ context.Context) error {
	return nil
}
