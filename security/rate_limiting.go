package security

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"
)

const rateLimitWindow = time.Minute

type RateLimiter struct {
	redis     *redis.Client
	perMinute int
}

// NewRateLimiter allows perMinute requests per client IP in each one-minute
// window. A nil client or a non-positive limit disables limiting.
func NewRateLimiter(redisClient *redis.Client, perMinute int) *RateLimiter {
	return &RateLimiter{redis: redisClient, perMinute: perMinute}
}

func (r *RateLimiter) Enabled() bool {
	return r.redis != nil && r.perMinute > 0
}

// RateLimit is a router middleware. Clients are keyed by e.RealIP(), which
// only honours forwarding headers listed in the app's trusted proxy settings.
// Redis failures let the request through.
func (r *RateLimiter) RateLimit(e *core.RequestEvent) error {
	if !r.Enabled() {
		return e.Next()
	}

	ctx := e.Request.Context()
	key := fmt.Sprintf("ratelimit:%s", e.RealIP())

	count, err := r.redis.Incr(ctx, key).Result()
	if err != nil {
		slog.Warn("Rate limiter unavailable", "key", key, "error", err)
		return e.Next()
	}
	if count == 1 {
		if err := r.redis.Expire(ctx, key, rateLimitWindow).Err(); err != nil {
			// A counter without a TTL would block the client for good.
			slog.Warn("Rate limit window not set, dropping counter", "key", key, "error", err)
			if err := r.redis.Del(ctx, key).Err(); err != nil {
				slog.Error("Failed to drop rate limit counter", "key", key, "error", err)
			}
			return e.Next()
		}
	}
	if count > int64(r.perMinute) {
		return e.JSON(http.StatusTooManyRequests, map[string]any{
			"success": false,
			"error":   "Too many requests",
		})
	}

	return e.Next()
}

// AntiBot rejects requests from crawler-like user agents.
func AntiBot(e *core.RequestEvent) error {
	if isSuspiciousUserAgent(e.Request.UserAgent()) {
		return e.JSON(http.StatusForbidden, map[string]any{
			"success": false,
			"error":   "Access denied",
		})
	}
	return e.Next()
}

func isSuspiciousUserAgent(ua string) bool {
	suspicious := []string{"bot", "crawler", "spider", "scraper"}
	ua = strings.ToLower(ua)
	for _, pattern := range suspicious {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
