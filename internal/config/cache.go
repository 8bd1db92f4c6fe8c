package config

import "time"

// CacheConfig controls the Redis response cache applied to read-only GET
// endpoints (document and ingestion listings).  When Enabled is false or no
// Redis client is available, the cache middleware becomes a no-op.
type CacheConfig struct {
    Enabled bool          // master switch
    TTL     time.Duration // lifetime of a cached response
    Prefix  string        // key namespace
}

// LoadCacheConfig builds a CacheConfig from environment variables with
// defaults suitable for development.
func LoadCacheConfig() CacheConfig {
    return CacheConfig{
        Enabled: getenv("CACHE_ENABLED", "true") == "true",
        TTL:     parseDur(getenv("CACHE_TTL", "30s")),
        Prefix:  getenv("CACHE_PREFIX", "cache"),
    }
}

func parseDur(s string) time.Duration {
    d, err := time.ParseDuration(s)
    if err != nil {
        return time.Second
    }
    return d
}
