package middleware

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wanderwise/wanderwise-backend/internal/errors"
	"github.com/wanderwise/wanderwise-backend/internal/metrics"
	"github.com/wanderwise/wanderwise-backend/pkg/redis"
)

// RateLimit admits at most limit requests per window for each caller of a
// scope. Authenticated callers are keyed by user id, guests by client IP.
// It is a pass-through when Redis is not configured, and fails open on
// Redis errors.
func RateLimit(scope string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !redis.Enabled() {
			c.Next()
			return
		}

		key := rateLimitKey(c, scope)
		allowed, retryAfter, err := redis.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			GetLoggerFromContext(c).Warn("Rate limiter unavailable, admitting request", map[string]interface{}{
				"scope": scope,
				"error": err.Error(),
			})
			c.Next()
			return
		}
		if !allowed {
			metrics.RecordRateLimited(scope)
			GetLoggerFromContext(c).Warn("Rate limit exceeded", map[string]interface{}{
				"scope": scope,
				"key":   key,
			})
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			errors.TooManyRequests(c, "")
			return
		}
		c.Next()
	}
}

func rateLimitKey(c *gin.Context, scope string) string {
	if userID, ok := GetUserID(c); ok {
		return fmt.Sprintf("%s:user:%d", scope, userID)
	}
	return fmt.Sprintf("%s:ip:%s", scope, c.ClientIP())
}
