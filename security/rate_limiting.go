package security

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/hook"
	"github.com/redis/go-redis/v9"
)

// RateLimiter keeps fixed one-minute request counters per client IP in Redis.
// Without a Redis client every request is let through.
type RateLimiter struct {
	redis  *redis.Client
	window time.Duration
}

func NewRateLimiter(redisClient *redis.Client) *RateLimiter {
	return &RateLimiter{redis: redisClient, window: time.Minute}
}

// Limit allows at most perWindow requests per client IP for the named scope.
func (r *RateLimiter) Limit(scope string, perWindow int) *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Id: "rateLimit:" + scope,
		Func: func(e *core.RequestEvent) error {
			if r.redis == nil || perWindow <= 0 {
				return e.Next()
			}

			ctx := e.Request.Context()
			key := fmt.Sprintf("ratelimit:%s:%s", scope, e.RealIP())

			count, err := r.redis.Incr(ctx, key).Result()
			if err != nil {
				slog.Warn("rate limiter unavailable", "scope", scope, "error", err)
				return e.Next()
			}
			if count == 1 {
				// A counter without a TTL would never reset.
				if err := r.redis.Expire(ctx, key, r.window).Err(); err != nil {
					slog.Warn("rate limiter window not set, dropping counter", "scope", scope, "error", err)
					if err := r.redis.Del(ctx, key).Err(); err != nil {
						slog.Error("rate limiter counter left without expiry", "key", key, "error", err)
					}
					return e.Next()
				}
			}
			if count > int64(perWindow) {
				return apis.NewTooManyRequestsError("Too many requests. Please try again later.", nil)
			}

			return e.Next()
		},
	}
}

// BlockBots rejects clients that announce themselves as crawlers.
func (r *RateLimiter) BlockBots() *hook.Handler[*core.RequestEvent] {
	return &hook.Handler[*core.RequestEvent]{
		Id: "blockBots",
		Func: func(e *core.RequestEvent) error {
			if isSuspiciousUserAgent(e.Request.UserAgent()) {
				return apis.NewForbiddenError("Access denied", nil)
			}
			return e.Next()
		},
	}
}

func isSuspiciousUserAgent(ua string) bool {
	ua = strings.ToLower(ua)
	for _, pattern := range []string{"bot", "crawler", "spider", "scraper"} {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
