// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package wsclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// recordingPublisher captures forwarded mutations.
type recordingPublisher struct {
	mu       sync.Mutex
	presence []models.PresenceUpdate
	patches  []models.UserPatch
}

func (r *recordingPublisher) PublishPresenceUpdate(u models.PresenceUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.presence = append(r.presence, u)
	return nil
}

func (r *recordingPublisher) PublishUserUpdate(p models.UserPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.patches = append(r.patches, p)
	return nil
}

func (r *recordingPublisher) snapshot() ([]models.PresenceUpdate, []models.UserPatch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.PresenceUpdate(nil), r.presence...), append([]models.UserPatch(nil), r.patches...)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestReconnectBackoffSchedule(t *testing.T) {
	// A server that never upgrades makes every dial attempt fail fast.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{
		URL:                  "ws" + strings.TrimPrefix(srv.URL, "http"),
		ReconnectBaseDelay:   time.Second,
		MaxReconnectAttempts: 5,
	}, nil, nil)

	var mu sync.Mutex
	var delays []time.Duration
	c.sleep = func(d time.Duration) {
		mu.Lock()
		delays = append(delays, d)
		mu.Unlock()
	}

	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("expected dial error")
	}

	waitFor(t, "channel to give up", func() bool { return c.State() == StateClosed })

	mu.Lock()
	defer mu.Unlock()
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if len(delays) != len(want) {
		t.Fatalf("scheduled %d reconnects (%v), want %d", len(delays), delays, len(want))
	}
	for i, d := range delays {
		if d != want[i] {
			t.Errorf("attempt %d delay = %v, want %v", i+1, d, want[i])
		}
	}
}

// pushServer upgrades connections and exposes the most recent one.
type pushServer struct {
	*httptest.Server
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns []*websocket.Conn
	dials int
}

func newPushServer(t *testing.T) *pushServer {
	t.Helper()
	ps := &pushServer{}
	ps.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := ps.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ps.mu.Lock()
		ps.conns = append(ps.conns, conn)
		ps.dials++
		ps.mu.Unlock()
	}))
	return ps
}

func (ps *pushServer) url() string {
	return "ws" + strings.TrimPrefix(ps.Server.URL, "http")
}

func (ps *pushServer) latest(t *testing.T) *websocket.Conn {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for {
		ps.mu.Lock()
		n := len(ps.conns)
		var conn *websocket.Conn
		if n > 0 {
			conn = ps.conns[n-1]
		}
		ps.mu.Unlock()
		if conn != nil {
			return conn
		}
		if time.Now().After(deadline) {
			t.Fatal("no connection arrived")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func (ps *pushServer) dialCount() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.dials
}

func (ps *pushServer) send(t *testing.T, msg models.PushMessage) {
	t.Helper()
	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := ps.latest(t).WriteMessage(websocket.TextMessage, payload); err != nil {
		t.Fatalf("server write: %v", err)
	}
}

func TestConnectIsIdempotent(t *testing.T) {
	srv := newPushServer(t)
	defer srv.Close()

	c := New(Config{URL: srv.url()}, nil, nil)
	defer c.Disconnect()

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, "open state", func() bool { return c.State() == StateOpen })

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("second connect: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if got := srv.dialCount(); got != 1 {
		t.Errorf("server saw %d dials, want 1", got)
	}
}

func TestHeartbeatIsAcked(t *testing.T) {
	srv := newPushServer(t)
	defer srv.Close()

	c := New(Config{URL: srv.url()}, nil, nil)
	defer c.Disconnect()
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}

	srv.send(t, models.NewPushMessage(models.PushTypeHeartbeat, nil))

	// The client sends enable_events on open; skip control traffic until
	// the ack shows up.
	conn := srv.latest(t)
	deadline := time.Now().Add(3 * time.Second)
	for {
		conn.SetReadDeadline(deadline)
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("server read: %v", err)
		}
		var msg models.PushMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if msg.Type == models.PushTypeEnableEvents {
			continue
		}
		if msg.Type != models.PushTypeHeartbeatAck {
			t.Fatalf("unexpected message %q before ack", msg.Type)
		}
		return
	}
}

func TestDispatchForwardsAndFansOut(t *testing.T) {
	srv := newPushServer(t)
	defer srv.Close()

	pub := &recordingPublisher{}
	c := New(Config{URL: srv.url()}, nil, pub)
	defer c.Disconnect()

	var mu sync.Mutex
	var seen []models.PushMessage
	c.Subscribe(models.PushTypeCallEvent, func(msg models.PushMessage) {
		mu.Lock()
		seen = append(seen, msg)
		mu.Unlock()
	})

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, "open state", func() bool { return c.State() == StateOpen })

	srv.send(t, models.NewPushMessage(models.PushTypePresenceEvent,
		json.RawMessage(`{"user_id":"u1","presence_status":"On_Phone_Call"}`)))
	srv.send(t, models.NewPushMessage(models.PushTypeUserUpdated,
		json.RawMessage(`{"user_id":"u2","status":"deactivate"}`)))
	srv.send(t, models.NewPushMessage(models.PushTypeCallEvent,
		json.RawMessage(`{"call_id":"c1"}`)))

	waitFor(t, "forwarded mutations", func() bool {
		presence, patches := pub.snapshot()
		return len(presence) == 1 && len(patches) == 1
	})
	presence, patches := pub.snapshot()
	if presence[0].UserID != "u1" || presence[0].Status != "On_Phone_Call" {
		t.Errorf("presence = %+v", presence[0])
	}
	if patches[0].UserID != "u2" {
		t.Errorf("patch = %+v", patches[0])
	}
	if v, ok := patches[0].Fields["status"].(string); !ok || v != "deactivate" {
		t.Errorf("patch fields = %+v", patches[0].Fields)
	}

	waitFor(t, "call event fan-out", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	})
}

func TestDisconnectDoesNotReconnect(t *testing.T) {
	srv := newPushServer(t)
	defer srv.Close()

	c := New(Config{URL: srv.url(), ReconnectBaseDelay: time.Millisecond}, nil, nil)
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("connect: %v", err)
	}
	waitFor(t, "open state", func() bool { return c.State() == StateOpen })

	c.Disconnect()
	time.Sleep(100 * time.Millisecond)

	if got := c.State(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
	if got := srv.dialCount(); got != 1 {
		t.Errorf("server saw %d dials after clean close, want 1", got)
	}
}
