package api

import "time"

// Cache-Control header values.
const (
	CacheNoStore      = "no-cache"
	CacheCoverPrivate = "private, max-age=86400"
)

// Per-client limits on the remote lookup routes.
const (
	DefaultLookupsPerMinute = 60
	DefaultLookupBurst      = 10
	lookupIdleTTL           = 10 * time.Minute
)

// MaxListLimit caps the page size of full-text search.
const MaxListLimit = 100
