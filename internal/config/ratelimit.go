package config

import "time"

// RateLimitConfig controls the fixed-window rate limiter applied to the auth
// endpoints.  Limit requests per Window per client; zero or a missing Redis
// client disables limiting entirely.
type RateLimitConfig struct {
    Enabled bool          // master switch
    Limit   int           // allowed requests per window
    Window  time.Duration // window length
    Prefix  string        // key namespace
}

// LoadRateLimitConfig builds a RateLimitConfig from environment variables.
func LoadRateLimitConfig() RateLimitConfig {
    return RateLimitConfig{
        Enabled: getenv("RATE_LIMIT_ENABLED", "true") == "true",
        Limit:   atoiDefault(getenv("RATE_LIMIT_MAX", "60"), 60),
        Window:  parseDur(getenv("RATE_LIMIT_WINDOW", "1m")),
        Prefix:  getenv("RATE_LIMIT_PREFIX", "rl"),
    }
}
