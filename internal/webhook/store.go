// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package webhook

import (
	"sync"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// Capacity of each category's retention buffer.
const storeCapacity = 50

// DefaultEventLimit applies when a retrieval call gives no limit.
const DefaultEventLimit = 10

// Store retains the most recent events per category, newest first.
// Retention is in-memory and best-effort; restarts drop everything.
type Store struct {
	mu       sync.RWMutex
	buffers  map[string][]models.WebhookEvent
	capacity int
}

// NewStore creates a Store with one empty buffer per known category.
func NewStore() *Store {
	buffers := make(map[string][]models.WebhookEvent, len(models.EventCategories))
	for _, cat := range models.EventCategories {
		buffers[cat] = nil
	}
	return &Store{buffers: buffers, capacity: storeCapacity}
}

// Record prepends the event to its category's buffer, dropping the oldest
// entry once the buffer is full.
func (s *Store) Record(category string, event models.WebhookEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	buf := s.buffers[category]
	buf = append([]models.WebhookEvent{event}, buf...)
	if len(buf) > s.capacity {
		buf = buf[:s.capacity]
	}
	s.buffers[category] = buf
}

// Events returns up to limit events from one category, newest first.
// A non-positive limit falls back to DefaultEventLimit. Unknown categories
// return an empty slice.
func (s *Store) Events(category string, limit int) []models.WebhookEvent {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	buf := s.buffers[category]
	if len(buf) > limit {
		buf = buf[:limit]
	}
	out := make([]models.WebhookEvent, len(buf))
	copy(out, buf)
	return out
}

// AllEvents returns every category's buffer, each capped to limit.
func (s *Store) AllEvents(limit int) map[string][]models.WebhookEvent {
	if limit <= 0 {
		limit = DefaultEventLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]models.WebhookEvent, len(s.buffers))
	for cat, buf := range s.buffers {
		if len(buf) > limit {
			buf = buf[:limit]
		}
		cp := make([]models.WebhookEvent, len(buf))
		copy(cp, buf)
		out[cat] = cp
	}
	return out
}
