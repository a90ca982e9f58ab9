// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/tigertix/ticket-assistant/internal/config"
	"github.com/tigertix/ticket-assistant/internal/handler"
	"github.com/tigertix/ticket-assistant/internal/middleware"
)

// Deps collects everything route registration needs. The Redis client
// may be nil, in which case caching and rate limiting are disabled.
type Deps struct {
	Cfg    config.Config
	Redis  *redis.Client
	Auth   *handler.AuthHandler
	Events *handler.EventHandler
	Chat   *handler.ChatHandler
	Admin  *handler.AdminEventHandler
}

// Register attaches all application routes to the Echo instance.
func Register(e *echo.Echo, d Deps) {
	e.GET("/healthz", handler.Health)

	// Account endpoints; no token required.
	auth := e.Group("/v1/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)

	// Public catalog. The listing is served from the Redis response
	// cache when available; cached availability is advisory only.
	cacheMW := middleware.CacheGET(config.LoadCacheConfig(), d.Redis)
	e.GET("/v1/events", d.Events.List, cacheMW)
	e.GET("/v1/events/:id", d.Events.Get)

	// Authenticated surface.
	protected := e.Group("/v1", middleware.JWTAuth(d.Cfg.JWTSecret))
	protected.GET("/me", d.Auth.Me)

	// Chat endpoints call the expensive generative-text provider, so
	// they carry the rate limiter on top of authentication.
	chat := protected.Group("/chat",
		middleware.RequireRole("CUSTOMER", "ADMIN"),
		middleware.RateLimit(config.LoadRateLimitConfig(), d.Redis),
	)
	chat.POST("/parse", d.Chat.Parse)
	chat.POST("/confirm", d.Chat.Confirm)

	// Admin event CRUD.
	admin := protected.Group("/admin", middleware.RequireRole("ADMIN"))
	admin.POST("/events", d.Admin.Create)
	admin.PUT("/events/:id", d.Admin.Update)
	admin.DELETE("/events/:id", d.Admin.Delete)
}
