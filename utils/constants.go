// File: utils/constants.go
package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthTokenTTL is the lifetime of an issued access token and of its cache entry.
const AuthTokenTTL = 7 * 24 * time.Hour

// CatalogCachePrefix prefixes every cached catalog read.
const CatalogCachePrefix = "catalog:"

// CatalogCacheTTL bounds how stale a cached catalog read may be.
const CatalogCacheTTL = 5 * time.Minute

// DateLayout is the calendar date format used for order dates.
const DateLayout = "2006-01-02"
