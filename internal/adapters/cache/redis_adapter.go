package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	redisclient "github.com/zatekoja/clinicassistant/internal/infrastructure/clients/redis"
)

// RedisAdapter implements the CacheProvider interface using Redis
type RedisAdapter struct {
	client    *redisclient.Client
	keyPrefix string
}

// NewRedisAdapter creates a new Redis cache adapter. Keys are namespaced under keyPrefix.
func NewRedisAdapter(client *redisclient.Client, keyPrefix string) providers.CacheProvider {
	return &RedisAdapter{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Get retrieves a value from cache
func (a *RedisAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := a.client.Client().Get(ctx, a.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, providers.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}
	return result, nil
}

// Set stores a value in cache with expiration
func (a *RedisAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	expiration := time.Duration(expirationSeconds) * time.Second
	if err := a.client.Client().Set(ctx, a.keyPrefix+key, value, expiration).Err(); err != nil {
		return fmt.Errorf("failed to set in cache: %w", err)
	}
	return nil
}

// Delete removes a value from cache
func (a *RedisAdapter) Delete(ctx context.Context, key string) error {
	if err := a.client.Client().Del(ctx, a.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}
