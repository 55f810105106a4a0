package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/clipvault/clipvault/internal/models"
)

const ownerStateKeyPrefix = "ownerstate:"

type RedisOwnerStateStore struct {
	client *redis.Client
}

func NewRedisOwnerStateStore(client *redis.Client) *RedisOwnerStateStore {
	return &RedisOwnerStateStore{client: client}
}

// Get returns the owner's pause state. Owners that have never been written
// are reported as unpaused; the record is only materialized on Set.
func (r *RedisOwnerStateStore) Get(ctx context.Context, ownerID string) (*models.OwnerState, error) {
	key := ownerStateKey(ownerID)

	data, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return &models.OwnerState{
			OwnerID:  ownerID,
			IsPaused: false,
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owner state: %w", err)
	}

	var state models.OwnerState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal owner state: %w", err)
	}

	return &state, nil
}

// Set writes the pause flag and refreshes UpdatedAt, even when the value is
// unchanged. Owner state is never given a TTL: owner identities are long-lived.
func (r *RedisOwnerStateStore) Set(ctx context.Context, ownerID string, isPaused bool) (*models.OwnerState, error) {
	state := &models.OwnerState{
		OwnerID:   ownerID,
		IsPaused:  isPaused,
		UpdatedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal owner state: %w", err)
	}

	if err := r.client.Set(ctx, ownerStateKey(ownerID), data, 0).Err(); err != nil {
		return nil, fmt.Errorf("failed to set owner state: %w", err)
	}

	return state, nil
}

// Helper: build Redis key for owner state
func ownerStateKey(ownerID string) string {
	return ownerStateKeyPrefix + ownerID
}
