// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package api

import (
	"net/http"
	"time"
)

// handleHealth is the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	health := map[string]interface{}{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
	}
	if s.breakerState != nil {
		health["upstream_breaker"] = s.breakerState()
	}

	rw.Success(health)
}
