// Package cooldown rate-limits chat commands per user with Redis keys.
package cooldown

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "rankedbot:cooldown:"

// RedisClient defines the subset of the Redis client the store needs
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	PTTL(ctx context.Context, key string) *redis.DurationCmd
}

// Store tracks per-user command cooldowns. A nil client disables cooldowns.
type Store struct {
	client RedisClient
	ttl    time.Duration
}

// New creates a cooldown store. Pass a nil client or a non-positive ttl to
// disable cooldowns.
func New(client RedisClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Enabled reports whether cooldowns are enforced.
func (s *Store) Enabled() bool {
	return s != nil && s.client != nil && s.ttl > 0
}

// Acquire claims the cooldown slot for (command, userID). It returns false
// and the remaining wait when the user ran the command too recently.
func (s *Store) Acquire(ctx context.Context, command, userID string) (bool, time.Duration, error) {
	if !s.Enabled() {
		return true, 0, nil
	}

	key := keyPrefix + command + ":" + userID
	ok, err := s.client.SetNX(ctx, key, time.Now().Unix(), s.ttl).Result()
	if err != nil {
		return false, 0, err
	}
	if ok {
		return true, 0, nil
	}

	remaining, err := s.client.PTTL(ctx, key).Result()
	if err != nil || remaining < 0 {
		remaining = s.ttl
	}
	return false, remaining, nil
}
