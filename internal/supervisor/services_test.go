// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"
)

// fakeServer blocks in ListenAndServe until Shutdown.
type fakeServer struct {
	mu       sync.Mutex
	shutdown bool
	done     chan struct{}
}

func newFakeServer() *fakeServer {
	return &fakeServer{done: make(chan struct{})}
}

func (f *fakeServer) ListenAndServe() error {
	<-f.done
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.mu.Lock()
	f.shutdown = true
	f.mu.Unlock()
	close(f.done)
	return nil
}

func (f *fakeServer) wasShutdown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shutdown
}

func TestHTTPServiceShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer()
	svc := NewHTTPService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if !srv.wasShutdown() {
		t.Error("server was not shut down")
	}
}

func TestHTTPServicePropagatesListenError(t *testing.T) {
	boom := errors.New("port in use")
	svc := NewHTTPService(&erroringServer{err: boom}, time.Second)

	err := svc.Serve(context.Background())
	if !errors.Is(err, boom) {
		t.Errorf("Serve returned %v", err)
	}
}

type erroringServer struct{ err error }

func (e *erroringServer) ListenAndServe() error              { return e.err }
func (e *erroringServer) Shutdown(ctx context.Context) error { return nil }

// countingRefresher counts RefreshAll calls.
type countingRefresher struct {
	mu    sync.Mutex
	calls int
}

func (c *countingRefresher) RefreshAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *countingRefresher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestRefreshServiceWarmsAndTicks(t *testing.T) {
	refresher := &countingRefresher{}
	svc := NewRefreshService(refresher, 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	// One warm call plus at least two ticks.
	for refresher.count() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("refresh ran %d times", refresher.count())
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
}

// fakeChannel records connect/disconnect.
type fakeChannel struct {
	mu           sync.Mutex
	connected    bool
	disconnected bool
}

func (f *fakeChannel) Connect(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = true
	return nil
}

func (f *fakeChannel) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnected = true
}

func TestPushServiceLifecycle(t *testing.T) {
	ch := &fakeChannel{}
	svc := NewPushService(ch)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return")
	}

	ch.mu.Lock()
	defer ch.mu.Unlock()
	if !ch.connected {
		t.Error("channel never connected")
	}
	if !ch.disconnected {
		t.Error("channel not disconnected on shutdown")
	}
}
