// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/cache"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/models"
)

// handleCacheStats returns per-key cache statistics.
func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]interface{}{
		"cache_stats": s.cache.Stats(),
	})
}

// refreshRequest optionally narrows a refresh to one resource kind.
type refreshRequest struct {
	Kind string `json:"kind"`
}

// handleCacheRefresh refreshes synchronously and returns the resulting
// stats. An empty body (or empty kind) refreshes every directory kind.
func (s *Server) handleCacheRefresh(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	// Body is optional; an empty one means "refresh everything".
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		rw.BadRequest("invalid JSON body")
		return
	}

	var err error
	if req.Kind == "" || req.Kind == "all" {
		err = s.cache.RefreshAll(r.Context())
	} else {
		err = s.cache.ForceRefresh(r.Context(), req.Kind)
	}

	var unknown *cache.UnknownKindError
	switch {
	case errors.As(err, &unknown):
		rw.BadRequest("unknown resource kind: " + unknown.Kind)
		return
	case err != nil:
		logging.Error().Err(err).Str("kind", req.Kind).Msg("cache refresh failed")
		rw.Error(http.StatusInternalServerError, ErrCodeUpstreamFailed, "cache refresh failed: "+err.Error())
		return
	}

	rw.Success(map[string]interface{}{
		"message":     "cache refreshed",
		"cache_stats": s.cache.Stats(),
	})
}

// handleCacheRefreshRun kicks off a full refresh in the background and
// returns immediately; outcome is observable via stats and logs.
func (s *Server) handleCacheRefreshRun(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	go func() {
		if err := s.cache.RefreshAll(context.Background()); err != nil {
			logging.Error().Err(err).Msg("background cache refresh failed")
		}
	}()

	rw.Success(map[string]interface{}{
		"message":   "cache refresh started",
		"timestamp": time.Now().UnixMilli(),
	})
}

// updatePresenceRequest is the direct presence mutation body.
type updatePresenceRequest struct {
	UserID       string `json:"userId" validate:"required"`
	PresenceData *struct {
		PresenceStatus string `json:"presence_status"`
		PersonalNotes  string `json:"personal_notes"`
	} `json:"presenceData" validate:"required"`
}

// handleUpdatePresence applies a direct presence write to the cache.
func (s *Server) handleUpdatePresence(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req updatePresenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		rw.BadRequestWithDetails("userId and presenceData are required", err.Error())
		return
	}

	s.cache.UpdateUserPresence(req.UserID, models.PhoneUserPresence{
		UserID:        req.UserID,
		Status:        req.PresenceData.PresenceStatus,
		PersonalNotes: req.PresenceData.PersonalNotes,
	})

	rw.Success(map[string]interface{}{
		"message": "presence updated",
		"userId":  req.UserID,
	})
}

// updateUserRequest is the direct user-directory mutation body.
type updateUserRequest struct {
	UserID   string                 `json:"userId" validate:"required"`
	UserData map[string]interface{} `json:"userData" validate:"required"`
}

// handleUpdateUser shallow-merges fields into the cached user entry.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		rw.BadRequestWithDetails("userId and userData are required", err.Error())
		return
	}

	s.cache.UpdateUser(req.UserID, models.UserPatch{
		UserID: req.UserID,
		Fields: req.UserData,
	})

	rw.Success(map[string]interface{}{
		"message": "user updated",
		"userId":  req.UserID,
	})
}
