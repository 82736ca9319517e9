// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/zoomapi"
)

// writeFetchError maps an upstream fetch failure to a response.
func (s *Server) writeFetchError(rw *ResponseWriter, err error) {
	if errors.Is(err, zoomapi.ErrNotAuthenticated) {
		rw.Unauthorized("not authenticated with the phone system")
		return
	}
	rw.Error(http.StatusInternalServerError, ErrCodeUpstreamFailed, err.Error())
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	users, err := s.cache.Users(r.Context())
	if err != nil {
		s.writeFetchError(rw, err)
		return
	}
	rw.Success(map[string]interface{}{"users": users})
}

func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	sites, err := s.cache.Sites(r.Context())
	if err != nil {
		s.writeFetchError(rw, err)
		return
	}
	rw.Success(map[string]interface{}{"sites": sites})
}

// handleCommonAreas never fails: the cache degrades to an empty list.
func (s *Server) handleCommonAreas(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]interface{}{"common_areas": s.cache.CommonAreas(r.Context())})
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	devices, err := s.cache.Devices(r.Context())
	if err != nil {
		s.writeFetchError(rw, err)
		return
	}
	rw.Success(map[string]interface{}{"devices": devices})
}

// handleUserPresence returns one user's presence; a nil presence means the
// upstream is unreachable and the status is unknown.
func (s *Server) handleUserPresence(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		rw.BadRequest("userID is required")
		return
	}
	rw.Success(map[string]interface{}{
		"userId":   userID,
		"presence": s.cache.UserPresence(r.Context(), userID),
	})
}
