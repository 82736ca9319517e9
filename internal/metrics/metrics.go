// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package metrics provides Prometheus instrumentation for the dashboard:
// API endpoint latency and throughput, phone-data cache efficiency,
// upstream Zoom API calls, webhook ingestion and the push channel.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Phone Data Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phone_cache_hits_total",
			Help: "Total number of phone data cache hits",
		},
		[]string{"key"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phone_cache_misses_total",
			Help: "Total number of phone data cache misses",
		},
		[]string{"key"},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "phone_cache_entries",
			Help: "Current number of phone data cache entries",
		},
	)

	// Upstream Zoom API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_upstream_requests_total",
			Help: "Total number of upstream Zoom API requests",
		},
		[]string{"resource", "outcome"}, // outcome: success, error
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zoom_upstream_request_duration_seconds",
			Help:    "Upstream Zoom API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "zoom_request_queue_depth",
			Help: "Current number of queued upstream requests",
		},
	)

	RateLimitDeferrals = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zoom_rate_limit_deferrals_total",
			Help: "Total number of queue drains deferred by the rate limiter",
		},
	)

	// Webhook Metrics
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_webhook_events_total",
			Help: "Total number of webhook events received by category",
		},
		[]string{"category"},
	)

	WebhookRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_webhook_rejections_total",
			Help: "Total number of rejected webhook deliveries",
		},
		[]string{"reason"}, // malformed, bad_signature, unconfigured
	)

	// Push Channel Metrics
	PushMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zoom_push_messages_total",
			Help: "Total number of push channel messages by type",
		},
		[]string{"type"},
	)

	PushReconnectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "zoom_push_reconnects_total",
			Help: "Total number of push channel reconnect attempts",
		},
	)
)

// RecordAPIRequest records metrics for an API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the active request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordUpstreamRequest records an upstream Zoom API call.
func RecordUpstreamRequest(resource string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	UpstreamRequestsTotal.WithLabelValues(resource, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(resource).Observe(duration.Seconds())
}

// RecordCacheHit records a cache hit for the given key.
func RecordCacheHit(key string) {
	CacheHits.WithLabelValues(key).Inc()
}

// RecordCacheMiss records a cache miss for the given key.
func RecordCacheMiss(key string) {
	CacheMisses.WithLabelValues(key).Inc()
}

// RecordWebhookEvent records a classified webhook event.
func RecordWebhookEvent(category string) {
	WebhookEventsTotal.WithLabelValues(category).Inc()
}

// RecordWebhookRejection records a rejected webhook delivery.
func RecordWebhookRejection(reason string) {
	WebhookRejectionsTotal.WithLabelValues(reason).Inc()
}

// RecordPushMessage records an inbound push channel message.
func RecordPushMessage(msgType string) {
	PushMessagesTotal.WithLabelValues(msgType).Inc()
}
