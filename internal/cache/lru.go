// Package cache provides caching utilities for the MCP server.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// LabelValuesCache provides thread-safe LRU caching of label values, keyed by
// label and the query they were listed for. Entries expire after a TTL since
// label values change as new profiles are ingested.
type LabelValuesCache struct {
	cache *expirable.LRU[labelKey, []string]
}

type labelKey struct {
	label string
	query string
}

// NewLabelValuesCache creates a cache holding at most maxItems entries for
// ttl each. A zero ttl disables expiry.
func NewLabelValuesCache(maxItems int, ttl time.Duration) *LabelValuesCache {
	return &LabelValuesCache{
		cache: expirable.NewLRU[labelKey, []string](maxItems, nil, ttl),
	}
}

// Get retrieves the values of label for query.
// Returns the values and true if found, nil and false otherwise.
func (c *LabelValuesCache) Get(label, query string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	return c.cache.Get(labelKey{label: label, query: query})
}

// Put adds or updates the values of label for query.
func (c *LabelValuesCache) Put(label, query string, values []string) {
	if c == nil {
		return
	}
	c.cache.Add(labelKey{label: label, query: query}, values)
}

// Purge drops every entry.
func (c *LabelValuesCache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}

// Len returns the current number of items in the cache.
func (c *LabelValuesCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}
