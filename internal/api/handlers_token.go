// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package api

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
)

// handleWebsocketToken mints a short-lived push channel token. The caller
// must hold a valid upstream session; the minted token proves that to the
// push gateway without handing it the upstream credential.
func (s *Server) handleWebsocketToken(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if s.tokens == nil {
		rw.Unauthorized("not authenticated")
		return
	}
	if _, err := s.tokens.AccessToken(r.Context()); err != nil {
		rw.Unauthorized("not authenticated")
		return
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "dashboard-push",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TokenTTL)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		logging.Error().Err(err).Msg("push token signing failed")
		rw.InternalError("token signing failed")
		return
	}

	rw.Success(map[string]string{"token": signed})
}
