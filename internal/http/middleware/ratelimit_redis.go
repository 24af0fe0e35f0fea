package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	redis "github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// InitRedisRateLimiter sets the Redis client shared by the limiters. With a
// nil client every limiter falls back to in-process counting.
func InitRedisRateLimiter(client *redis.Client) {
	redisClient = client
}

// RateLimit implements a fixed-window limit per client IP.
// Redis key format: rl:<name>:<window_seconds>:<ip>
func RateLimit(name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	fallback := newMemoryWindow(window)
	windowKey := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		ident := c.ClientIP()
		count, ok := incr(c.Request.Context(), "rl:"+name+":"+windowKey+":"+ident, window)
		if !ok {
			if redisClient != nil {
				// Redis is configured but failing: fail open
				c.Header("X-RateLimit-Error", "redis-error")
				c.Next()
				return
			}
			count = int64(fallback.hit(ident, time.Now()))
		}
		limit(c, name, count, maxRequests, window)
	}
}

// incr bumps key and reports false when Redis is absent or errored.
func incr(ctx context.Context, key string, window time.Duration) (int64, bool) {
	if redisClient == nil {
		return 0, false
	}
	val, err := redisClient.Incr(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	if val == 1 {
		// first increment, set expiry
		redisClient.Expire(ctx, key, window)
	}
	return val, true
}

func limit(c *gin.Context, name string, count int64, maxRequests int, window time.Duration) {
	c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, int64(maxRequests)-count), 10))

	if count > int64(maxRequests) {
		RLBlocked.WithLabelValues(name).Inc()
		c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       "rate limit exceeded",
			"retry_after": int(window.Seconds()),
		})
		return
	}

	RLRequests.WithLabelValues(name).Inc()
	c.Next()
}
