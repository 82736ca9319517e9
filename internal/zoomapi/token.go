// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package zoomapi

import "context"

// StaticTokenProvider serves one fixed access token, typically injected
// through the environment by the external OAuth layer. An empty token means
// the process is not authenticated.
type StaticTokenProvider string

// AccessToken implements TokenProvider.
func (t StaticTokenProvider) AccessToken(ctx context.Context) (string, error) {
	if t == "" {
		return "", ErrNotAuthenticated
	}
	return string(t), nil
}
