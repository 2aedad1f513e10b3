package middleware

import (
	"bytes"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinicassistant/internal/domain/providers"
	"github.com/zatekoja/clinicassistant/internal/infrastructure/observability"
)

// DefaultCacheTTLSeconds is how long a cached diagnostics response stays valid
const DefaultCacheTTLSeconds = 60

// CacheMiddleware caches successful GET responses for selected routes
type CacheMiddleware struct {
	cache   providers.CacheProvider
	metrics *observability.Metrics
	routes  map[string]int
}

// NewCacheMiddleware creates a cache middleware for the diagnostics route.
// A nil cache disables caching.
func NewCacheMiddleware(cache providers.CacheProvider, metrics *observability.Metrics, ttlSeconds int) *CacheMiddleware {
	if ttlSeconds <= 0 {
		ttlSeconds = DefaultCacheTTLSeconds
	}
	return &CacheMiddleware{
		cache:   cache,
		metrics: metrics,
		routes: map[string]int{
			providers.DiagnosticsCachePath: ttlSeconds,
		},
	}
}

// Middleware returns the cache middleware handler
func (m *CacheMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.cache == nil || r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}

		ttl, ok := m.routes[r.URL.Path]
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		logger := observability.LoggerFromContext(ctx)
		cacheKey := providers.HTTPCacheKey(r.URL.Path, r.URL.RawQuery)

		if cached, err := m.cache.Get(ctx, cacheKey); err == nil {
			observability.RecordCacheHit(ctx, m.metrics, r.URL.Path)
			logger.Debug().Str("key", cacheKey).Msg("Cache hit")
			w.Header().Set("X-Cache", "HIT")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(cached)
			return
		}

		observability.RecordCacheMiss(ctx, m.metrics, r.URL.Path)
		w.Header().Set("X-Cache", "MISS")

		recorder := &responseRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			body:           &bytes.Buffer{},
		}
		next.ServeHTTP(recorder, r)

		if recorder.statusCode != http.StatusOK || recorder.body.Len() == 0 {
			return
		}
		if err := m.cache.Set(ctx, cacheKey, recorder.body.Bytes(), ttl); err != nil {
			log.Warn().Err(err).Str("key", cacheKey).Msg("Failed to cache response")
			return
		}
		logger.Debug().Str("key", cacheKey).Int("ttl_seconds", ttl).Msg("Cached response")
	})
}

// responseRecorder tees the response body so it can be cached
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
	written    bool
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	if r.written {
		return
	}
	r.statusCode = statusCode
	r.written = true
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *responseRecorder) Write(data []byte) (int, error) {
	if !r.written {
		r.WriteHeader(http.StatusOK)
	}
	r.body.Write(data)
	return r.ResponseWriter.Write(data)
}
