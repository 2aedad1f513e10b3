package providers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// ErrCacheMiss is returned by CacheProvider.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheProvider defines the interface for caching operations
type CacheProvider interface {
	// Get retrieves a value from cache, returning ErrCacheMiss when absent
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in cache with expiration
	Set(ctx context.Context, key string, value []byte, expirationSeconds int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error
}

// DiagnosticsCachePath is the cached admin diagnostics route
const DiagnosticsCachePath = "/api/admin/diagnostics"

// HTTPCacheKey returns the response cache key for a GET request
func HTTPCacheKey(path, rawQuery string) string {
	target := path
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	sum := sha256.Sum256([]byte(target))
	return "http:cache:" + hex.EncodeToString(sum[:])
}
