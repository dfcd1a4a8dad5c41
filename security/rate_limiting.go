package security

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/router"
	"github.com/redis/go-redis/v9"

	"ticket-lookup/monitoring"
)

const (
	// DefaultLimit is the number of lookups one client may make per window.
	DefaultLimit = 30

	keyPrefix = "ticket-lookup:ratelimit:"
)

// RateLimiter counts requests per client in fixed windows kept in redis.
// Every lookup may walk the whole upstream listing, so the limit protects
// the upstream as much as this service.
type RateLimiter struct {
	redis   redis.Cmdable
	limit   int64
	window  time.Duration
	monitor *monitoring.Monitor

	// Identify extracts the client key from a request. Defaults to the
	// client IP.
	Identify func(e *core.RequestEvent) string
}

func NewRateLimiter(redisClient redis.Cmdable, limit int64, monitor *monitoring.Monitor) *RateLimiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &RateLimiter{
		redis:    redisClient,
		limit:    limit,
		window:   time.Minute,
		monitor:  monitor,
		Identify: func(e *core.RequestEvent) string { return e.RealIP() },
	}
}

// Allow records one request for key and reports whether it is within the
// limit.
func (r *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + key

	count, err := r.redis.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit: incr: %w", err)
	}
	switch {
	case count == 1:
		if err := r.redis.Expire(ctx, redisKey, r.window).Err(); err != nil {
			return false, fmt.Errorf("rate limit: expire: %w", err)
		}
	case count > r.limit:
		if err := r.ensureWindow(ctx, redisKey); err != nil {
			return false, err
		}
	}
	return count <= r.limit, nil
}

// ensureWindow restores the expiry of a counter that lost it, otherwise the
// client would stay over the limit forever.
func (r *RateLimiter) ensureWindow(ctx context.Context, redisKey string) error {
	ttl, err := r.redis.TTL(ctx, redisKey).Result()
	if err != nil {
		return fmt.Errorf("rate limit: ttl: %w", err)
	}
	if ttl != -1 {
		return nil
	}

	slog.Warn("rate limit window had no expiry", "key", redisKey)
	if err := r.redis.Expire(ctx, redisKey, r.window).Err(); err != nil {
		return fmt.Errorf("rate limit: expire: %w", err)
	}
	return nil
}

// Middleware rejects clients over the limit with 429. Redis failures let
// the request through.
func (r *RateLimiter) Middleware() func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		key := r.Identify(e)
		if isSuspiciousUserAgent(e.Request.UserAgent()) {
			key = "ua:" + key
		}

		allowed, err := r.Allow(e.Request.Context(), key)
		if err != nil {
			slog.Warn("rate limiter unavailable", "key", key, "error", err)
			return e.Next()
		}
		if !allowed {
			r.monitor.TrackRateLimited()
			return router.NewApiError(http.StatusTooManyRequests, "Too many requests", nil)
		}
		return e.Next()
	}
}

// crawlers get their own bucket so they cannot exhaust a shared address
func isSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range []string{"bot", "crawler", "spider", "scraper"} {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
