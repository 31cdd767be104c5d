// internal/cache/cache.go
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ===============================
// CACHE INTERFACE
// ===============================

// Cache is an expiring key-value store holding serialized snapshots.
// Values are copied on the way in and out, so callers never share memory
// with the cache.
type Cache interface {
	// Basic operations
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) bool

	// Pattern operations
	DeletePattern(ctx context.Context, pattern string) error

	// Cache management
	Stats(ctx context.Context) (*CacheStats, error)
	Health(ctx context.Context) error
	Close() error
}

// CacheStats represents cache statistics
type CacheStats struct {
	Hits             int64         `json:"hits"`
	Misses           int64         `json:"misses"`
	Sets             int64         `json:"sets"`
	Deletes          int64         `json:"deletes"`
	Keys             int64         `json:"keys"`
	HitRatio         float64       `json:"hit_ratio"`
	Uptime           time.Duration `json:"uptime"`
	UsedMemory       int64         `json:"used_memory"`
	ConnectedClients int64         `json:"connected_clients"`
	ExpiredKeys      int64         `json:"expired_keys"`
	EvictedKeys      int64         `json:"evicted_keys"`
}

// ErrCacheClosed is returned by operations on a closed memory cache
var ErrCacheClosed = errors.New("cache is closed")

// ===============================
// CACHE CONFIGURATION
// ===============================

// Config holds cache configuration
type Config struct {
	Provider        string        `json:"provider"` // "memory", "redis"
	TTL             time.Duration `json:"ttl"`      // used when Set is called with ttl <= 0
	MaxKeys         int           `json:"max_keys"`
	CleanupInterval time.Duration `json:"cleanup_interval"`

	// Redis configuration
	RedisURL      string        `json:"redis_url"`
	RedisAddr     string        `json:"redis_addr"`
	RedisDB       int           `json:"redis_db"`
	RedisPassword string        `json:"-"`
	PoolSize      int           `json:"pool_size"`
	DialTimeout   time.Duration `json:"dial_timeout"`
}

// DefaultConfig returns a default cache configuration
func DefaultConfig() *Config {
	return &Config{
		Provider:        "memory",
		TTL:             15 * time.Minute,
		MaxKeys:         10000,
		CleanupInterval: 5 * time.Minute,
		RedisAddr:       "127.0.0.1:6379",
		PoolSize:        10,
		DialTimeout:     5 * time.Second,
	}
}

// ===============================
// MEMORY CACHE IMPLEMENTATION
// ===============================

// memoryCache implements Cache using in-memory storage
type memoryCache struct {
	mu              sync.Mutex
	items           map[string]*cacheItem
	maxKeys         int
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
	stats           CacheStats
	startTime       time.Time
	stopCh          chan struct{}
	closed          bool
	now             func() time.Time
}

// cacheItem represents a cached item
type cacheItem struct {
	Value      []byte
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache(config *Config, logger *zap.Logger) Cache {
	return newMemoryCache(config, logger, time.Now)
}

func newMemoryCache(config *Config, logger *zap.Logger, now func() time.Time) *memoryCache {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &memoryCache{
		items:           make(map[string]*cacheItem),
		maxKeys:         config.MaxKeys,
		defaultTTL:      config.TTL,
		cleanupInterval: config.CleanupInterval,
		logger:          logger,
		startTime:       now(),
		stopCh:          make(chan struct{}),
		now:             now,
	}

	if c.cleanupInterval > 0 {
		go c.cleanup()
	}

	return c
}

// Get retrieves a copy of the value stored under key
func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, exists := c.items[key]
	if !exists {
		c.stats.Misses++
		return nil, false
	}

	now := c.now()
	if !now.Before(item.ExpiresAt) {
		delete(c.items, key)
		c.stats.Misses++
		c.stats.ExpiredKeys++
		return nil, false
	}

	item.AccessedAt = now
	c.stats.Hits++

	return cloneBytes(item.Value), true
}

// Set stores a copy of value under key
func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}

	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	if _, exists := c.items[key]; !exists && c.maxKeys > 0 && len(c.items) >= c.maxKeys {
		c.evictLRU()
	}

	now := c.now()
	c.items[key] = &cacheItem{
		Value:      cloneBytes(value),
		ExpiresAt:  now.Add(ttl),
		AccessedAt: now,
	}
	c.stats.Sets++

	return nil
}

// Delete removes keys from the cache
func (c *memoryCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, key := range keys {
		if _, ok := c.items[key]; ok {
			delete(c.items, key)
			c.stats.Deletes++
		}
	}
	return nil
}

// Exists checks if a live key exists
func (c *memoryCache) Exists(ctx context.Context, key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[key]
	return ok && c.now().Before(item.ExpiresAt)
}

// DeletePattern deletes keys matching a glob-like pattern ("prefix*", "*suffix" or exact)
func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.items {
		if matchPattern(key, pattern) {
			delete(c.items, key)
			c.stats.Deletes++
		}
	}
	return nil
}

// Stats returns a snapshot of cache statistics
func (c *memoryCache) Stats(ctx context.Context) (*CacheStats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := c.stats
	stats.Keys = int64(len(c.items))
	stats.Uptime = c.now().Sub(c.startTime)
	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRatio = float64(stats.Hits) / float64(total)
	}
	return &stats, nil
}

// Health reports whether the cache accepts writes
func (c *memoryCache) Health(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrCacheClosed
	}
	return nil
}

// Close stops the cleanup goroutine
func (c *memoryCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.stopCh)
	return nil
}

// cleanup runs periodic cleanup of expired items
func (c *memoryCache) cleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stopCh:
			return
		}
	}
}

// cleanupExpired removes expired items
func (c *memoryCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expired := 0
	for key, item := range c.items {
		if !now.Before(item.ExpiresAt) {
			delete(c.items, key)
			expired++
		}
	}

	if expired > 0 {
		c.stats.ExpiredKeys += int64(expired)
		c.logger.Debug("Cleaned up expired cache items",
			zap.Int("expired_count", expired),
			zap.Int("remaining_count", len(c.items)),
		)
	}
}

// evictLRU evicts the least recently used item. Caller holds the lock.
func (c *memoryCache) evictLRU() {
	var oldestKey string
	var oldestTime time.Time

	for key, item := range c.items {
		if oldestKey == "" || item.AccessedAt.Before(oldestTime) {
			oldestKey = key
			oldestTime = item.AccessedAt
		}
	}

	if oldestKey != "" {
		delete(c.items, oldestKey)
		c.stats.EvictedKeys++
	}
}

// ===============================
// UTILITY FUNCTIONS
// ===============================

// matchPattern performs simple wildcard pattern matching
func matchPattern(str, pattern string) bool {
	if pattern == "*" {
		return true
	}

	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(str, strings.TrimSuffix(pattern, "*"))
	}

	if strings.HasPrefix(pattern, "*") {
		return strings.HasSuffix(str, strings.TrimPrefix(pattern, "*"))
	}

	return str == pattern
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ===============================
// FACTORY FUNCTION
// ===============================

// NewCache creates a new cache instance based on configuration
func NewCache(config *Config, logger *zap.Logger) (Cache, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	switch strings.ToLower(config.Provider) {
	case "redis":
		return NewRedisCache(config, logger)
	case "memory", "":
		logger.Info("Using in-memory cache")
		return NewMemoryCache(config, logger), nil
	default:
		return nil, fmt.Errorf("unsupported cache provider: %s", config.Provider)
	}
}

// ===============================
// REDIS CACHE IMPLEMENTATION
// ===============================

type redisCache struct {
	client *redis.Client
	logger *zap.Logger
	config *Config
}

// NewRedisCache creates a new Redis-based cache
func NewRedisCache(config *Config, logger *zap.Logger) (Cache, error) {
	if config == nil {
		return nil, fmt.Errorf("cache config cannot be nil")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	var options *redis.Options
	if config.RedisURL != "" {
		var err error
		options, err = redis.ParseURL(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
	} else {
		addr := config.RedisAddr
		if addr == "" {
			addr = "127.0.0.1:6379"
		}
		options = &redis.Options{
			Addr:     addr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		}
	}

	if config.PoolSize > 0 {
		options.PoolSize = config.PoolSize
	}

	client := redis.NewClient(options)

	timeout := config.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis cache initialized",
		zap.String("addr", options.Addr),
		zap.Int("db", options.DB),
	)

	return &redisCache{
		client: client,
		logger: logger,
		config: config,
	}, nil
}

func (r *redisCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	} else if err != nil {
		r.logger.Warn("Failed to get from Redis",
			zap.String("key", key),
			zap.Error(err))
		return nil, false
	}
	return val, true
}

func (r *redisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.config.TTL
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCache) Exists(ctx context.Context, key string) bool {
	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Warn("Failed to check key existence",
			zap.String("key", key),
			zap.Error(err))
		return false
	}
	return exists > 0
}

func (r *redisCache) DeletePattern(ctx context.Context, pattern string) error {
	iter := r.client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string

	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		// Delete in batches to avoid blocking Redis for too long
		if len(keys) >= 1000 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}

	if err := iter.Err(); err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}

	return nil
}

func (r *redisCache) Stats(ctx context.Context) (*CacheStats, error) {
	stats := &CacheStats{}

	for _, section := range []string{"stats", "memory", "clients"} {
		info, err := r.client.Info(ctx, section).Result()
		if err != nil {
			r.logger.Warn("Failed to get Redis info",
				zap.String("section", section),
				zap.Error(err))
			continue
		}

		for _, line := range strings.Split(info, "\r\n") {
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, ":", 2)
			if len(parts) != 2 {
				continue
			}

			v, err := strconv.ParseInt(strings.TrimSpace(parts[1]), 10, 64)
			if err != nil {
				continue
			}

			switch strings.TrimSpace(parts[0]) {
			case "used_memory":
				stats.UsedMemory = v
			case "connected_clients":
				stats.ConnectedClients = v
			case "expired_keys":
				stats.ExpiredKeys = v
			case "evicted_keys":
				stats.EvictedKeys = v
			case "keyspace_hits":
				stats.Hits = v
			case "keyspace_misses":
				stats.Misses = v
			}
		}
	}

	if keys, err := r.client.DBSize(ctx).Result(); err == nil {
		stats.Keys = keys
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRatio = float64(stats.Hits) / float64(total)
	}

	return stats, nil
}

func (r *redisCache) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *redisCache) Close() error {
	return r.client.Close()
}
