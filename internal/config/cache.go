package config

import "time"

// CacheConfig controls the Redis response cache applied to the public
// event listing. When Enabled is false or no Redis client could be
// constructed, caching is disabled and requests always hit the
// database. The TTL is deliberately short: cached availability counts
// are advisory only, the ledger's conditional write is what enforces
// capacity.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads environment variables to build a CacheConfig.
// Defaults are used when variables are not set.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: getenv("CACHE_ENABLED", "true") == "true",
		TTL:     parseDur(getenv("CACHE_TTL", "15s")),
		Prefix:  getenv("CACHE_PREFIX", "cache"),
	}
}
