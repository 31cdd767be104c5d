// file: internal/middleware/rate_limiter.go
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rekaloka/internal/cache"
	"rekaloka/internal/response"
	"rekaloka/internal/services"

	"go.uber.org/zap"
)

// RateLimitResult is the outcome of one limit check
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetTime  time.Time
	RetryAfter time.Duration
}

// RateLimiter counts requests per client IP in fixed windows stored in the
// cache, so limits hold across instances when the cache is redis.
type RateLimiter struct {
	cache  cache.Cache
	limit  int
	window time.Duration
	scope  string
	logger *zap.Logger
	now    func() time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window.
// scope separates the counters of independently limited route groups.
func NewRateLimiter(c cache.Cache, scope string, limit int, window time.Duration, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		cache:  c,
		limit:  limit,
		window: window,
		scope:  scope,
		logger: logger,
		now:    time.Now,
	}
}

// Middleware rejects requests over budget with 429. The limiter fails open:
// a missing cache or a limit of zero lets every request through.
func (rl *RateLimiter) Middleware(builder *response.Builder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil || rl.cache == nil || rl.limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := rl.Check(r.Context(), getClientIP(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetTime.Unix(), 10))

			if !result.Allowed {
				seconds := int(result.RetryAfter.Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(seconds))
				GetRequestLogger(r.Context()).Warn("Rate limit exceeded",
					zap.String("scope", rl.scope),
					zap.Int("limit", result.Limit))

				err := &services.ServiceError{
					Type:       "RATE_LIMITED",
					Message:    "Too many requests, try again later",
					Code:       "RATE_LIMITED",
					StatusCode: http.StatusTooManyRequests,
					Details:    map[string]interface{}{"retry_after_seconds": seconds},
				}
				builder.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Check counts one request from key against the current window
func (rl *RateLimiter) Check(ctx context.Context, key string) *RateLimitResult {
	now := rl.now()
	windowStart := now.Truncate(rl.window)
	windowKey := fmt.Sprintf("ratelimit:%s:%s:%d", rl.scope, key, windowStart.Unix())

	count := rl.getCount(ctx, windowKey)

	allowed := count < rl.limit
	if allowed {
		count++
		rl.setCount(ctx, windowKey, count)
	}

	remaining := rl.limit - count
	if remaining < 0 {
		remaining = 0
	}

	resetTime := windowStart.Add(rl.window)
	return &RateLimitResult{
		Allowed:    allowed,
		Limit:      rl.limit,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: resetTime.Sub(now),
	}
}

func (rl *RateLimiter) getCount(ctx context.Context, key string) int {
	data, ok := rl.cache.Get(ctx, key)
	if !ok {
		return 0
	}
	count, err := strconv.Atoi(string(data))
	if err != nil {
		return 0
	}
	return count
}

func (rl *RateLimiter) setCount(ctx context.Context, key string, count int) {
	if err := rl.cache.Set(ctx, key, []byte(strconv.Itoa(count)), rl.window); err != nil {
		rl.logger.Warn("Failed to record rate limit counter", zap.String("key", key), zap.Error(err))
	}
}
