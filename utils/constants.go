package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 10 * time.Minute

// VenueCachePrefix is the prefix used for cached venue search results.
const VenueCachePrefix = "venues:"

// VenueCacheTTL bounds how long a raw candidate list may be reused.
const VenueCacheTTL = 10 * time.Minute
