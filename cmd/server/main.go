// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Command server runs the dashboard backend: the phone data cache with its
// rate-limited request queue, the webhook ingress, the push event client,
// and the HTTP API, all under one supervision tree.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/api"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/bus"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/cache"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/config"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/queue"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/ratelimit"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/supervisor"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/webhook"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/wsclient"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/zoomapi"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Int("port", cfg.Server.Port).
		Msg("starting zoom dashboard server")

	// OAuth token exchange lives outside this service; it hands us a valid
	// access token through the environment.
	tokens := zoomapi.StaticTokenProvider(os.Getenv("ZOOM_ACCESS_TOKEN"))

	limiter := ratelimit.New(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	requestQueue := queue.New(limiter, cfg.RateLimit.PacingDelay)

	zoomClient := zoomapi.NewClient(zoomapi.Config{
		BaseURL:  cfg.Zoom.APIBaseURL,
		PageSize: cfg.Zoom.PageSize,
	}, tokens)

	phoneCache := cache.New(cache.Config{
		DirectoryTTL: cfg.Cache.DirectoryTTL,
		PresenceTTL:  cfg.Cache.PresenceTTL,
	}, zoomClient, requestQueue)

	eventBus := bus.New()
	defer eventBus.Close()
	consumer := bus.NewConsumer(eventBus, phoneCache)

	processor := webhook.NewProcessor(webhook.NewStore(), eventBus,
		cfg.Zoom.WebhookSecret, cfg.IsProduction())

	pushClient := wsclient.New(wsclient.Config{
		URL:                  cfg.Zoom.WebSocketURL,
		HeartbeatInterval:    cfg.Push.HeartbeatInterval,
		ReconnectBaseDelay:   cfg.Push.ReconnectBaseDelay,
		MaxReconnectAttempts: cfg.Push.MaxReconnectAttempts,
	}, tokens, eventBus)

	server := api.NewServer(api.Config{
		CORSOrigins:       cfg.Security.CORSOrigins,
		RateLimitRequests: cfg.Security.RateLimitReqs,
		RateLimitWindow:   cfg.Security.RateLimitWindow,
		JWTSecret:         cfg.Security.JWTSecret,
		TokenTTL:          cfg.Security.TokenTTL,
	}, phoneCache, processor, tokens, zoomClient.BreakerState)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(slog.New(slog.NewJSONHandler(os.Stdout, nil)), supervisor.TreeConfig{})

	if cfg.Cache.RefreshInterval > 0 {
		tree.AddDataService(supervisor.NewRefreshService(phoneCache, cfg.Cache.RefreshInterval))
	}
	tree.AddMessagingService(consumer)
	if cfg.Push.Enabled && cfg.Zoom.WebSocketURL != "" {
		tree.AddMessagingService(supervisor.NewPushService(pushClient))
	}
	tree.AddAPIService(supervisor.NewHTTPService(httpServer, cfg.Server.Timeout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", httpServer.Addr).Msg("supervision tree starting")
	if err := tree.Serve(ctx); err != nil && err != context.Canceled {
		return err
	}

	logging.Info().Msg("shutdown complete")
	return nil
}
