package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tigertix/ticket-assistant/internal/config"
)

// RateLimit returns a Redis-backed fixed-window limiter. Windows are
// counted per client per route with INCR, so the count survives across
// all processes sharing the Redis instance. When the limiter is
// disabled or Redis is unavailable the middleware is a no-op; the chat
// endpoints fail open rather than refusing traffic.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s:%s", cfg.Prefix, clientKey(c), c.Path())
			ctx := c.Request().Context()

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis trouble must not take the endpoint down.
				return next(c)
			}
			if n == 1 {
				rdb.Expire(ctx, key, cfg.Window)
			}
			if n > int64(cfg.Limit) {
				ttl, _ := rdb.TTL(ctx, key).Result()
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(ttl.Seconds())))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

// clientKey identifies the caller: the authenticated user when JWTAuth
// ran earlier in the chain, otherwise the remote IP.
func clientKey(c echo.Context) string {
	if uid := c.Get("user_id"); uid != nil {
		return fmt.Sprintf("u:%v", uid)
	}
	return "ip:" + c.RealIP()
}
