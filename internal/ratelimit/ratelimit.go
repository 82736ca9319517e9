// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package ratelimit implements the fixed-window request limiter that gates
// outbound Zoom API calls.
//
// A fixed window (not sliding, not token bucket) gives burst-then-reset
// semantics: a caller can issue the full budget at the start of a window
// and must then wait out the remainder. This matches the upstream API's
// published per-second budget; see the sliding-window policy note in
// DESIGN.md before swapping the algorithm.
package ratelimit

import (
	"sync"
	"time"
)

// SharedKey is the single global key used for all upstream calls in the
// current design. The limiter itself is per-key so future per-resource
// budgets need no API change.
const SharedKey = "zoom_api"

// entry tracks one key's count within its current window.
type entry struct {
	count     int
	resetTime time.Time
}

// Limiter is a per-key fixed-window rate limiter.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]entry

	maxRequests int
	window      time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Limiter allowing maxRequests per window for each key.
func New(maxRequests int, window time.Duration) *Limiter {
	if maxRequests <= 0 {
		maxRequests = 10
	}
	if window <= 0 {
		window = time.Second
	}
	return &Limiter{
		entries:     make(map[string]entry),
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// Limited reports whether the key is currently over budget, counting this
// call against the window when it is not.
//
// Side effects: a key with no entry, or whose window has elapsed, is
// (re)initialized to {count:1, reset: now+window} and is not limited. A key
// at or over budget is limited and its count is left untouched. Otherwise
// the count is incremented and the key is not limited.
func (l *Limiter) Limited(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetTime) {
		l.entries[key] = entry{count: 1, resetTime: now.Add(l.window)}
		return false
	}

	if e.count >= l.maxRequests {
		return true
	}

	e.count++
	l.entries[key] = e
	return false
}

// Window returns the limiter's window duration.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// WindowState returns the current count and reset time for a key.
// Exposed for stats endpoints and tests; returns ok=false when the key has
// never been seen.
func (l *Limiter) WindowState(key string) (count int, resetTime time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, found := l.entries[key]
	if !found {
		return 0, time.Time{}, false
	}
	return e.count, e.resetTime, true
}

// SetNowFunc overrides the limiter's clock. Tests only.
func (l *Limiter) SetNowFunc(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}
