package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// UserRateLimit limits requests per signed-in user rather than per IP.
// Session must run before it.
func UserRateLimit(name string, maxRequests int, window time.Duration) gin.HandlerFunc {
	fallback := newMemoryWindow(window)
	windowKey := strconv.FormatInt(int64(window.Seconds()), 10)

	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		count, ok := incr(c.Request.Context(), "user_rl:"+name+":"+windowKey+":"+userID, window)
		if !ok {
			if redisClient != nil {
				c.Header("X-RateLimit-Error", "redis-error")
				c.Next()
				return
			}
			count = int64(fallback.hit(userID, time.Now()))
		}
		limit(c, "user:"+name, count, maxRequests, window)
	}
}
