package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// ===============================
// READ-THROUGH STORE
// ===============================

// Store puts a Cache in front of a loader. It never fails a read or a write
// because of the cache: lookups that error count as misses and invalidation
// errors are logged.
type Store struct {
	cache  Cache
	logger *zap.Logger
}

// NewStore wraps c. A nil cache disables caching entirely.
func NewStore(c Cache, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{cache: c, logger: logger}
}

// Cache returns the underlying cache, possibly nil
func (s *Store) Cache() Cache {
	return s.cache
}

// GetOrLoad returns the snapshot stored under key, or calls load, stores its
// JSON encoding for ttl and returns it. Each call decodes a fresh value.
func GetOrLoad[T any](ctx context.Context, s *Store, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if s != nil && s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var v T
			err := json.Unmarshal(raw, &v)
			if err == nil {
				s.logger.Debug("Cache hit", zap.String("key", key))
				return v, nil
			}
			s.logger.Warn("Discarding undecodable cache entry",
				zap.String("key", key),
				zap.Error(err))
			s.Invalidate(ctx, key)
		}
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}

	if s != nil && s.cache != nil {
		s.put(ctx, key, v, ttl)
	}
	return v, nil
}

func (s *Store) put(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Failed to encode cache value", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, ttl); err != nil {
		s.logger.Warn("Failed to cache result",
			zap.String("key", key),
			zap.Error(err))
		return
	}
	s.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
}

// Invalidate deletes keys. Failures are logged and swallowed so the write
// that triggered the invalidation still succeeds.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s == nil || s.cache == nil || len(keys) == 0 {
		return
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Error("Cache invalidation failed",
			zap.Strings("keys", keys),
			zap.Error(err))
		return
	}
	s.logger.Debug("Cache invalidated", zap.Strings("keys", keys))
}

// InvalidatePattern deletes every key matching pattern, fail-open
func (s *Store) InvalidatePattern(ctx context.Context, pattern string) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, pattern); err != nil {
		s.logger.Error("Cache pattern invalidation failed",
			zap.String("pattern", pattern),
			zap.Error(err))
	}
}
