package middlewares

import (
	"net/http"
	"os"
	"time"

	"aquawatch-be/config"

	"github.com/gin-gonic/gin"
)

// ReportRateLimiter caps report submissions per user (or per client IP for
// anonymous reports) over a rolling day, backed by Redis.
func ReportRateLimiter(limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if userIDVal, exists := c.Get("user_id"); exists {
			if userID, ok := userIDVal.(string); ok && userID != "" {
				key = userID
			}
		}

		ctx := config.Ctx
		queuePrefix := os.Getenv("REDIS_QUEUE_FOR_REPORT_LIMIT")
		if queuePrefix == "" {
			queuePrefix = "report_limit"
		}

		userKey := queuePrefix + ":" + key

		count, err := config.RedisClient.Incr(ctx, userKey).Result()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error incrementing count"})
			c.Abort()
			return
		}

		// Set TTL only for the first increment (when count = 1)
		if count == 1 {
			err = config.RedisClient.Expire(ctx, userKey, 24*time.Hour).Err()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "redis error setting TTL"})
				c.Abort()
				return
			}
		}

		if count > int64(limit) {
			retryAfter, _ := config.RedisClient.TTL(ctx, userKey).Result()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": retryAfter.Seconds(),
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
