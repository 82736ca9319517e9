// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package zoomapi implements the remote resource fetchers for the Zoom
// Phone REST API: one authenticated call (with page following) per resource
// kind, each behind a circuit breaker.
//
// OAuth token exchange and refresh live outside this module; the client
// only consumes a TokenProvider.
package zoomapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/metrics"
)

// TokenProvider supplies a currently valid OAuth access token.
// Implemented by the session/auth layer outside this module.
type TokenProvider interface {
	// AccessToken returns a valid bearer token or an error when the
	// process is not authenticated.
	AccessToken(ctx context.Context) (string, error)
}

// ErrNotAuthenticated is returned when no valid access token is available.
var ErrNotAuthenticated = errors.New("zoomapi: not authenticated")

// Config holds client settings.
type Config struct {
	// BaseURL of the Zoom REST API, e.g. https://api.zoom.us/v2
	BaseURL string

	// PageSize for list endpoints (Zoom caps this at 100).
	PageSize int

	// HTTPClient may be overridden in tests. Defaults to a client with a
	// 30s transport timeout.
	HTTPClient *http.Client
}

// Client performs authenticated Zoom Phone API calls.
type Client struct {
	baseURL  string
	pageSize int
	http     *http.Client
	tokens   TokenProvider
	breaker  *gobreaker.CircuitBreaker[json.RawMessage]
}

// NewClient creates a Client with a circuit breaker in front of every call.
// The breaker opens after five consecutive failures and probes again after
// thirty seconds; an open breaker surfaces as an upstream fetch failure.
func NewClient(cfg Config, tokens TokenProvider) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 100
	}

	settings := gobreaker.Settings{
		Name:    "zoom-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state change")
		},
	}

	return &Client{
		baseURL:  cfg.BaseURL,
		pageSize: pageSize,
		http:     httpClient,
		tokens:   tokens,
		breaker:  gobreaker.NewCircuitBreaker[json.RawMessage](settings),
	}
}

// BreakerState returns the circuit breaker state for health reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}

// get performs one authenticated GET and returns the raw response body.
// Every call runs through the circuit breaker.
func (c *Client) get(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	return c.breaker.Execute(func() (json.RawMessage, error) {
		return c.doGet(ctx, path, query)
	})
}

func (c *Client) doGet(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	token, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAuthenticated, err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("zoomapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.RecordUpstreamRequest(path, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("zoomapi: GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("zoomapi: read response for %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("zoomapi: GET %s: unexpected status %d: %s", path, resp.StatusCode, truncate(body, 200))
	}

	return body, nil
}

// truncate bounds error payloads included in messages.
func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
