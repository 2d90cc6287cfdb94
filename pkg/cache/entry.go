// Package cache provides an optional Redis-backed cache for immutable
// CourtListener resources (clusters and opinions).
package cache

import (
	"fmt"
	"time"
)

// Entry is a cached resource body.
type Entry struct {
	// Body is the raw JSON resource body as returned by the API.
	Body []byte `json:"body"`

	// CachedAt is when the resource was cached.
	CachedAt time.Time `json:"cached_at"`
}

// Key identifies a cached resource by collection and identifier.
type Key struct {
	// Kind is the resource collection, e.g. "clusters" or "opinions".
	Kind string

	// ID is the resource identifier.
	ID string
}

// String generates a deterministic cache key string.
//
// Example:
//
//	courtlistener:clusters:12345
func (k Key) String() string {
	return fmt.Sprintf("courtlistener:%s:%s", k.Kind, k.ID)
}
