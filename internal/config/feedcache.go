package config

import "time"

// FeedCacheConfig defines settings for the Redis-backed RSS feed cache.
// When Enabled is false or no Redis client is configured, every request
// fetches the remote feed directly.  TTL controls how long a parsed feed
// is served from cache; the default matches the dashboard's feed refresh
// interval.  Prefix namespaces cache keys so the same Redis instance can
// be shared with the rate limiter.
type FeedCacheConfig struct {
    Enabled bool
    TTL     time.Duration
    Prefix  string
}

// LoadFeedCacheConfig reads environment variables to build a FeedCacheConfig.
// Defaults are used when variables are not set.
func LoadFeedCacheConfig() FeedCacheConfig {
    return FeedCacheConfig{
        Enabled: envBool("FEED_CACHE_ENABLED", true),
        TTL:     envDur("FEED_CACHE_TTL", 15*time.Minute),
        Prefix:  envStr("FEED_CACHE_PREFIX", "feed"),
    }
}
