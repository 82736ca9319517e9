// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/cache"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/middleware"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/webhook"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/zoomapi"
)

// Config holds the HTTP surface settings.
type Config struct {
	// CORSOrigins allowed for browser callers.
	CORSOrigins []string

	// RateLimitRequests per RateLimitWindow, applied per client IP to the
	// whole API group. This is inbound protection, unrelated to the
	// outbound Zoom budget.
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// JWTSecret signs push channel tokens.
	JWTSecret string

	// TokenTTL bounds minted push tokens. Default 1h.
	TokenTTL time.Duration
}

// Server bundles the handlers' dependencies.
type Server struct {
	cfg       Config
	cache     *cache.PhoneCache
	processor *webhook.Processor
	tokens    zoomapi.TokenProvider
	validate  *validator.Validate
	startTime time.Time

	// breakerState reports upstream circuit state for health output; may be
	// nil when no upstream client is wired (tests).
	breakerState func() string
}

// NewServer creates the HTTP surface over its collaborators.
func NewServer(cfg Config, phoneCache *cache.PhoneCache, processor *webhook.Processor, tokens zoomapi.TokenProvider, breakerState func() string) *Server {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.RateLimitRequests <= 0 {
		cfg.RateLimitRequests = 100
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = time.Minute
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	return &Server{
		cfg:          cfg,
		cache:        phoneCache,
		processor:    processor,
		tokens:       tokens,
		validate:     validator.New(),
		startTime:    time.Now(),
		breakerState: breakerState,
	}
}

// Router assembles the chi routing tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.PrometheusMetrics)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(s.cfg.RateLimitRequests, s.cfg.RateLimitWindow))

		r.Get("/health", s.handleHealth)

		r.Route("/cache", func(r chi.Router) {
			r.Get("/refresh", s.handleCacheStats)
			r.Post("/refresh", s.handleCacheRefresh)
			r.Get("/refresh/run", s.handleCacheRefreshRun)
			r.Post("/update-presence", s.handleUpdatePresence)
			r.Post("/update-user", s.handleUpdateUser)
		})

		r.Post("/webhooks", s.handleWebhookIngress)
		r.Get("/webhooks", s.handleWebhookEvents)

		r.Get("/websocket/token", s.handleWebsocketToken)

		r.Get("/users", s.handleUsers)
		r.Get("/users/{userID}/presence", s.handleUserPresence)
		r.Get("/sites", s.handleSites)
		r.Get("/common-areas", s.handleCommonAreas)
		r.Get("/devices", s.handleDevices)
	})

	return r
}
