// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package supervisor

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
)

// HTTPServer matches *http.Server's lifecycle methods so tests can swap in
// a fake.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPService adapts an HTTP server's blocking ListenAndServe to suture's
// context-aware Serve.
type HTTPService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
}

// NewHTTPService wraps a server for supervision.
func NewHTTPService(server HTTPServer, shutdownTimeout time.Duration) *HTTPService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &HTTPService{server: server, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service. http.ErrServerClosed is the expected
// shutdown signal, not a failure.
func (s *HTTPService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			logging.Warn().Err(err).Msg("http server shutdown incomplete")
		}
		return ctx.Err()
	}
}

// Refresher is the cache operation the scheduled refresh drives.
type Refresher interface {
	RefreshAll(ctx context.Context) error
}

// RefreshService warms the cache on start and refreshes on a fixed
// interval thereafter.
type RefreshService struct {
	cache    Refresher
	interval time.Duration
}

// NewRefreshService creates the scheduled refresh. Default interval 15m.
func NewRefreshService(cache Refresher, interval time.Duration) *RefreshService {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &RefreshService{cache: cache, interval: interval}
}

// Serve implements suture.Service. Refresh failures are logged, not fatal:
// the next tick retries and reads fall back to read-through.
func (s *RefreshService) Serve(ctx context.Context) error {
	if err := s.cache.RefreshAll(ctx); err != nil {
		logging.Warn().Err(err).Msg("initial cache warm failed")
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.cache.RefreshAll(ctx); err != nil {
				logging.Warn().Err(err).Msg("scheduled cache refresh failed")
			} else {
				logging.Debug().Msg("scheduled cache refresh complete")
			}
		}
	}
}

// PushChannel is the push client surface the service drives.
type PushChannel interface {
	Connect(ctx context.Context) error
	Disconnect()
}

// PushService keeps the push channel alive for the process lifetime. The
// client handles its own reconnection; this service only opens the channel
// and closes it cleanly on shutdown.
type PushService struct {
	client PushChannel
}

// NewPushService wraps a push client for supervision.
func NewPushService(client PushChannel) *PushService {
	return &PushService{client: client}
}

// Serve implements suture.Service.
func (s *PushService) Serve(ctx context.Context) error {
	if err := s.client.Connect(ctx); err != nil {
		// The client schedules its own reconnects; a failed first dial is
		// not a service failure.
		logging.Warn().Err(err).Msg("initial push channel dial failed")
	}

	<-ctx.Done()
	s.client.Disconnect()
	return ctx.Err()
}
