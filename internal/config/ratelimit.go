package config

import "time"

// RateLimitConfig controls the Redis fixed-window limiter applied to
// the chat endpoints. The chat parse path may call the external
// generative-text provider, which is the most expensive operation in
// the service, so it gets a much lower ceiling than ordinary routes.
type RateLimitConfig struct {
	Enabled bool
	Limit   int           // requests allowed per window, per client
	Window  time.Duration // window length
	Prefix  string        // Redis key namespace
}

// LoadRateLimitConfig reads environment variables to build a
// RateLimitConfig. Defaults allow 20 chat requests per minute.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
		Limit:   atoi(getenv("RATE_LIMIT_REQUESTS", "20")),
		Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
		Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
	}
	if cfg.Limit < 1 {
		cfg.Limit = 1
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	return cfg
}
