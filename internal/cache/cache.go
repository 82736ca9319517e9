// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package cache implements the read-through store that mediates between the
// UI-facing read endpoints and the upstream Zoom Phone API.
//
// Entries carry a per-kind TTL (directory kinds 15m, presence 2m by
// default). A read on a valid entry returns the cached value; a miss routes
// the fetch through the request queue, deduplicated per key with
// singleflight so concurrent misses share one upstream call. Push-driven
// events mutate entries directly, bypassing the read-through path.
//
// Every out-of-band write (push mutation, invalidation, forced refresh)
// advances the key's generation; a read-through write-back whose generation
// is stale is discarded, so a refresh during an in-flight fetch never gets
// overwritten by that fetch's older result.
package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/metrics"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/queue"
)

// Cache keys. The kind prefix is part of the key, so parameterized keys
// cannot collide with kind constants.
const (
	KeyUsers       = "users"
	KeySites       = "sites"
	KeyCommonAreas = "common_areas"
	KeyDevices     = "devices"

	presenceKeyPrefix = "presence_"
)

// PresenceKey returns the cache key for one user's presence entry.
func PresenceKey(userID string) string {
	return presenceKeyPrefix + userID
}

// Source provides the per-resource upstream fetch functions.
// Satisfied by *zoomapi.Client.
type Source interface {
	ListUsers(ctx context.Context) ([]models.PhoneUser, error)
	ListSites(ctx context.Context) ([]models.Site, error)
	ListCommonAreas(ctx context.Context) ([]models.CommonArea, error)
	ListDevices(ctx context.Context) ([]models.Device, error)
	GetUserPresence(ctx context.Context, userID string) (*models.PhoneUserPresence, error)
}

// entry is one cached value with its write time and expiry.
type entry struct {
	data      interface{}
	timestamp time.Time
	expiresAt time.Time
}

// PhoneCache is the process-wide phone data cache. It is a constructible
// component (not a package singleton) so tests build fresh instances.
type PhoneCache struct {
	mu          sync.RWMutex
	entries     map[string]entry
	generations map[string]uint64

	group  singleflight.Group
	queue  *queue.Queue
	source Source

	directoryTTL time.Duration
	presenceTTL  time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// Config holds cache TTLs.
type Config struct {
	DirectoryTTL time.Duration
	PresenceTTL  time.Duration
}

// New creates a PhoneCache backed by the given source and request queue.
func New(cfg Config, source Source, q *queue.Queue) *PhoneCache {
	if cfg.DirectoryTTL <= 0 {
		cfg.DirectoryTTL = 15 * time.Minute
	}
	if cfg.PresenceTTL <= 0 {
		cfg.PresenceTTL = 2 * time.Minute
	}
	return &PhoneCache{
		entries:      make(map[string]entry),
		generations:  make(map[string]uint64),
		queue:        q,
		source:       source,
		directoryTTL: cfg.DirectoryTTL,
		presenceTTL:  cfg.PresenceTTL,
		now:          time.Now,
	}
}

// lookup returns a valid entry, deleting it lazily when expired.
func (c *PhoneCache) lookup(key string) (entry, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return entry{}, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		// Re-check under the write lock; another goroutine may have
		// repopulated the key in the meantime.
		if cur, still := c.entries[key]; still && cur.timestamp.Equal(e.timestamp) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		return entry{}, false
	}
	return e, true
}

// store writes a read-through result unless the key's generation advanced
// while the fetch was in flight.
func (c *PhoneCache) store(key string, gen uint64, data interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[key] != gen {
		logging.Debug().Str("key", key).Msg("discarding stale cache write-back")
		return
	}

	now := c.now()
	c.entries[key] = entry{
		data:      data,
		timestamp: now,
		expiresAt: now.Add(ttl),
	}
	metrics.CacheEntries.Set(float64(len(c.entries)))
}

// put writes an out-of-band mutation, advancing the key's generation so any
// in-flight read-through for the same key is discarded on write-back.
func (c *PhoneCache) put(key string, data interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[key]++
	now := c.now()
	c.entries[key] = entry{
		data:      data,
		timestamp: now,
		expiresAt: now.Add(ttl),
	}
	metrics.CacheEntries.Set(float64(len(c.entries)))
}

// generation returns the key's current generation.
func (c *PhoneCache) generation(key string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generations[key]
}

// readThrough returns the cached value for key or fetches it through the
// queue, deduplicating concurrent misses per key.
func readThrough[T any](c *PhoneCache, ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, error) {
	if e, ok := c.lookup(key); ok {
		metrics.RecordCacheHit(key)
		return e.data.(T), nil
	}
	metrics.RecordCacheMiss(key)

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		gen := c.generation(key)

		raw, err := c.queue.Enqueue(ctx, key, func(ctx context.Context) (interface{}, error) {
			return fetch(ctx)
		})
		if err != nil {
			return nil, err
		}

		c.store(key, gen, raw, ttl)
		return raw, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Users returns the phone user directory, fetching on miss.
func (c *PhoneCache) Users(ctx context.Context) ([]models.PhoneUser, error) {
	return readThrough(c, ctx, KeyUsers, c.directoryTTL, c.source.ListUsers)
}

// Sites returns the site directory, fetching on miss.
func (c *PhoneCache) Sites(ctx context.Context) ([]models.Site, error) {
	return readThrough(c, ctx, KeySites, c.directoryTTL, c.source.ListSites)
}

// CommonAreas returns the common-area phones, fetching on miss.
//
// Unlike the other getters this never returns an error: common areas are
// decorative on every screen that shows them, so a fetch failure degrades
// to an empty slice instead of failing the whole page.
func (c *PhoneCache) CommonAreas(ctx context.Context) []models.CommonArea {
	areas, err := readThrough(c, ctx, KeyCommonAreas, c.directoryTTL, c.source.ListCommonAreas)
	if err != nil {
		logging.Warn().Err(err).Msg("common areas fetch failed, serving empty list")
		return []models.CommonArea{}
	}
	return areas
}

// Devices returns the provisioned devices, fetching on miss.
func (c *PhoneCache) Devices(ctx context.Context) ([]models.Device, error) {
	return readThrough(c, ctx, KeyDevices, c.directoryTTL, c.source.ListDevices)
}

// UserPresence returns one user's presence, fetching on miss. Returns nil
// (not an error) when the fetch fails so the UI shows "unknown" rather
// than erroring.
func (c *PhoneCache) UserPresence(ctx context.Context, userID string) *models.PhoneUserPresence {
	key := PresenceKey(userID)
	p, err := readThrough(c, ctx, key, c.presenceTTL, func(ctx context.Context) (*models.PhoneUserPresence, error) {
		return c.source.GetUserPresence(ctx, userID)
	})
	if err != nil {
		logging.Warn().Err(err).Str("user_id", userID).Msg("presence fetch failed")
		return nil
	}
	return p
}

// UpdateUserPresence writes one user's presence unconditionally, resetting
// its TTL. Used by the push-driven mutation paths.
func (c *PhoneCache) UpdateUserPresence(userID string, presence models.PhoneUserPresence) {
	presence.UserID = userID
	if presence.UpdatedAt == 0 {
		presence.UpdatedAt = c.now().UnixMilli()
	}
	c.put(PresenceKey(userID), &presence, c.presenceTTL)
}

// UpdateUser shallow-merges a patch into the cached user with the given ID
// and rewrites the users entry with a fresh TTL. No-op when the user
// directory is not currently cached.
func (c *PhoneCache) UpdateUser(userID string, patch models.UserPatch) {
	e, ok := c.lookup(KeyUsers)
	if !ok {
		return
	}
	users, ok := e.data.([]models.PhoneUser)
	if !ok {
		return
	}

	updated := make([]models.PhoneUser, len(users))
	copy(updated, users)
	for i := range updated {
		if updated[i].ID == userID {
			applyUserPatch(&updated[i], patch.Fields)
			break
		}
	}

	c.put(KeyUsers, updated, c.directoryTTL)
}

// applyUserPatch merges the known patchable fields into a user.
func applyUserPatch(u *models.PhoneUser, fields map[string]interface{}) {
	for k, v := range fields {
		s, isString := v.(string)
		switch k {
		case "email":
			if isString {
				u.Email = s
			}
		case "name", "display_name":
			if isString {
				u.Name = s
			}
		case "status":
			if isString {
				u.Status = s
			}
		case "presence_status":
			if isString {
				u.PresenceStatus = s
			}
		case "personal_notes":
			if isString {
				u.PersonalNotes = s
			}
		case "site_id":
			if isString {
				u.SiteID = s
			}
		case "department":
			if isString {
				u.Department = s
			}
		case "extension_number":
			if f, isNum := v.(float64); isNum {
				u.ExtensionNumber = int64(f)
			}
		}
	}
}

// Invalidate removes one key and advances its generation.
func (c *PhoneCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[key]++
	delete(c.entries, key)
	metrics.CacheEntries.Set(float64(len(c.entries)))
}

// Clear removes all entries, advancing every known key's generation so
// in-flight fetches cannot resurrect pre-clear data.
func (c *PhoneCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.generations {
		c.generations[key]++
	}
	for key := range c.entries {
		// Keys cached before their first generation bump
		if _, ok := c.generations[key]; !ok {
			c.generations[key] = 1
		}
	}
	c.entries = make(map[string]entry)
	metrics.CacheEntries.Set(0)
}

// ForceRefresh invalidates and eagerly repopulates one kind, or clears the
// whole cache when kind is "all". Behaves identically whether or not a
// prior entry existed.
func (c *PhoneCache) ForceRefresh(ctx context.Context, kind string) error {
	switch kind {
	case "all":
		c.Clear()
		return nil
	case KeyUsers:
		c.Invalidate(KeyUsers)
		_, err := c.Users(ctx)
		return err
	case KeySites:
		c.Invalidate(KeySites)
		_, err := c.Sites(ctx)
		return err
	case KeyCommonAreas:
		c.Invalidate(KeyCommonAreas)
		c.CommonAreas(ctx)
		return nil
	case KeyDevices:
		c.Invalidate(KeyDevices)
		_, err := c.Devices(ctx)
		return err
	default:
		return &UnknownKindError{Kind: kind}
	}
}

// RefreshAll force-refreshes every directory kind. Used by the scheduled
// refresh service and the refresh endpoints. The first error is returned
// after all kinds have been attempted.
func (c *PhoneCache) RefreshAll(ctx context.Context) error {
	var first error
	for _, kind := range []string{KeyUsers, KeySites, KeyCommonAreas, KeyDevices} {
		if err := c.ForceRefresh(ctx, kind); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// UnknownKindError reports a ForceRefresh call with an unrecognized kind.
type UnknownKindError struct {
	Kind string
}

func (e *UnknownKindError) Error() string {
	return "cache: unknown resource kind " + e.Kind
}
