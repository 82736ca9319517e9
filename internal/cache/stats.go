// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package cache

import (
	"github.com/goccy/go-json"
)

// KeyStats describes one cached entry for the stats endpoint.
type KeyStats struct {
	// SizeBytes is the JSON-encoded size of the entry's data.
	SizeBytes int `json:"size"`

	// AgeMS is how long ago the entry was written, in milliseconds.
	AgeMS int64 `json:"age"`

	// ExpiresInMS is time until expiry in milliseconds; negative once the
	// entry has expired but not yet been lazily evicted.
	ExpiresInMS int64 `json:"expiresIn"`

	// Expired reports whether the entry is past its TTL.
	Expired bool `json:"expired"`
}

// Stats returns a snapshot of every cached entry keyed by cache key.
// Expired entries still resident (not yet read, so not yet evicted) appear
// with Expired true.
func (c *PhoneCache) Stats() map[string]KeyStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	stats := make(map[string]KeyStats, len(c.entries))
	for key, e := range c.entries {
		size := 0
		if b, err := json.Marshal(e.data); err == nil {
			size = len(b)
		}
		stats[key] = KeyStats{
			SizeBytes:   size,
			AgeMS:       now.Sub(e.timestamp).Milliseconds(),
			ExpiresInMS: e.expiresAt.Sub(now).Milliseconds(),
			Expired:     !now.Before(e.expiresAt),
		}
	}
	return stats
}
