package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/logger"
	"github.com/gogotex/gogotex/backend/user-sync/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

// RedisRateLimitMiddleware is a fixed-window limiter shared by every replica.
// Each window admits floor(rps*window)+burst requests per route and caller.
// A nil client falls back to the in-process limiter. Redis errors admit the
// request: a dropped delivery costs more than an unthrottled one.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	win := int64(window / time.Second)
	if win <= 0 {
		win = 1
	}
	limit := int64(rps*float64(win)) + int64(burst)
	retryAfter := strconv.FormatInt(win, 10)

	return func(c *gin.Context) {
		key := fmt.Sprintf("rl:%s|%s:%d", c.FullPath(), limitKey(c), time.Now().Unix()/win)
		n, err := windowCount(c.Request.Context(), client, key, time.Duration(win+1)*time.Second)
		if err != nil {
			logger.WithContext(c.Request.Context()).Warnf("rate limit: %v", err)
			c.Next()
			return
		}
		if n > limit {
			c.Header("Retry-After", retryAfter)
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}

// windowCount increments key and refreshes its expiry in one round trip.
func windowCount(ctx context.Context, client *redis.Client, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		p.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}
