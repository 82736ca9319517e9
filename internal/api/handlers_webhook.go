// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/webhook"
)

// Webhook deliveries are small; anything larger is hostile.
const maxWebhookBody = 1 << 20

// handleWebhookIngress receives one upstream delivery. The response bodies
// for the handshake and the acknowledgement are dictated by the upstream
// caller and bypass the standard envelope.
func (s *Server) handleWebhookIngress(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		rw.BadRequest("unreadable request body")
		return
	}

	result := s.processor.Process(body,
		r.Header.Get("x-zm-signature"),
		r.Header.Get("x-zm-request-timestamp"))

	switch result.Outcome {
	case webhook.OutcomeHandshake:
		writeRaw(w, http.StatusOK, result.Handshake)
	case webhook.OutcomeProcessed:
		writeRaw(w, http.StatusOK, map[string]bool{"success": true})
	case webhook.OutcomeMalformed:
		rw.BadRequest("malformed webhook payload")
	case webhook.OutcomeBadSignature:
		rw.Error(http.StatusUnauthorized, ErrCodeSignatureRejected, "webhook signature verification failed")
	case webhook.OutcomeMissingSecret:
		rw.Error(http.StatusInternalServerError, ErrCodeNotConfigured, "webhook secret not configured")
	default:
		rw.InternalError("unhandled webhook outcome")
	}
}

// handleWebhookEvents returns retained events, either one category or all
// of them, newest first and capped by limit.
func (s *Server) handleWebhookEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	eventType := r.URL.Query().Get("type")
	if eventType == "" {
		eventType = "all"
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			rw.BadRequest("limit must be a non-negative integer")
			return
		}
		limit = n
	}

	store := s.processor.Store()
	if eventType == "all" {
		rw.Success(map[string]interface{}{
			"type":   "all",
			"events": store.AllEvents(limit),
		})
		return
	}

	rw.Success(map[string]interface{}{
		"type":   eventType,
		"events": store.Events(eventType, limit),
	})
}
