// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// recordingCache captures consumer writes.
type recordingCache struct {
	mu       sync.Mutex
	presence []models.PhoneUserPresence
	patches  []models.UserPatch
}

func (r *recordingCache) UpdateUserPresence(userID string, p models.PhoneUserPresence) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presence = append(r.presence, p)
}

func (r *recordingCache) UpdateUser(userID string, patch models.UserPatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patches = append(r.patches, patch)
}

func (r *recordingCache) snapshot() ([]models.PhoneUserPresence, []models.UserPatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.PhoneUserPresence(nil), r.presence...), append([]models.UserPatch(nil), r.patches...)
}

func TestConsumerAppliesPresenceAndUserEvents(t *testing.T) {
	b := New()
	defer b.Close()

	cache := &recordingCache{}
	consumer := NewConsumer(b, cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Serve(ctx) }()

	// Give the subscriptions time to register before publishing.
	time.Sleep(20 * time.Millisecond)

	if err := b.PublishPresenceUpdate(models.PresenceUpdate{UserID: "u1", Status: "On_Phone_Call"}); err != nil {
		t.Fatalf("publish presence: %v", err)
	}
	if err := b.PublishUserUpdate(models.UserPatch{UserID: "u2", Fields: map[string]interface{}{"status": "deactivate"}}); err != nil {
		t.Fatalf("publish user: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		presence, patches := cache.snapshot()
		if len(presence) == 1 && len(patches) == 1 {
			if presence[0].UserID != "u1" || presence[0].Status != "On_Phone_Call" {
				t.Fatalf("presence = %+v", presence[0])
			}
			if patches[0].UserID != "u2" {
				t.Fatalf("patch = %+v", patches[0])
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("events not applied: presence=%d patches=%d", len(presence), len(patches))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestConsumerSkipsEventsWithoutUserID(t *testing.T) {
	b := New()
	defer b.Close()

	cache := &recordingCache{}
	consumer := NewConsumer(b, cache)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Serve(ctx) }()
	time.Sleep(20 * time.Millisecond)

	if err := b.PublishPresenceUpdate(models.PresenceUpdate{Status: "Available"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	time.Sleep(100 * time.Millisecond)
	presence, _ := cache.snapshot()
	if len(presence) != 0 {
		t.Fatalf("expected no writes, got %d", len(presence))
	}
}
