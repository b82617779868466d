package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/roadready/roadready-api/internal/config"
)

// RateLimit returns a fixed-window request limiter backed by Redis,
// keyed per client IP, route and window. With a nil Redis client, or
// when Redis errors, requests pass through unthrottled: losing the cache
// must degrade the limiter, not the API.
func RateLimit(rdb *redis.Client, cfg config.RateLimitConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled || rdb == nil {
				return next(c)
			}
			window := time.Now().Unix() / int64(cfg.Window/time.Second)
			key := fmt.Sprintf("%s:%s:%s:%d", cfg.Prefix, c.RealIP(), c.Path(), window)

			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				rdb.Expire(ctx, key, cfg.Window+time.Second)
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
