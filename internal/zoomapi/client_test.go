// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package zoomapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestListUsersFollowsPagination(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/phone/users" {
			t.Errorf("path = %q", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		switch calls.Add(1) {
		case 1:
			if got := r.URL.Query().Get("next_page_token"); got != "" {
				t.Errorf("first page got token %q", got)
			}
			w.Write([]byte(`{"next_page_token":"p2","users":[{"id":"u1"},{"id":"u2"}]}`))
		default:
			if got := r.URL.Query().Get("next_page_token"); got != "p2" {
				t.Errorf("second page token = %q", got)
			}
			w.Write([]byte(`{"users":[{"id":"u3"}]}`))
		}
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, StaticTokenProvider("tok"))
	users, err := c.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("got %d users", len(users))
	}
	if users[2].ID != "u3" {
		t.Errorf("users = %+v", users)
	}
	if calls.Load() != 2 {
		t.Errorf("server saw %d calls", calls.Load())
	}
}

func TestGetUserPresence(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/u1/presence_status" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"Do_Not_Disturb","personal_notes":"focus"}`))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, StaticTokenProvider("tok"))
	p, err := c.GetUserPresence(context.Background(), "u1")
	if err != nil {
		t.Fatalf("GetUserPresence: %v", err)
	}
	if p.UserID != "u1" || p.Status != "Do_Not_Disturb" || p.PersonalNotes != "focus" {
		t.Errorf("presence = %+v", p)
	}
}

func TestUnauthenticatedClient(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://127.0.0.1:0"}, StaticTokenProvider(""))
	_, err := c.ListSites(context.Background())
	if !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("err = %v", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, StaticTokenProvider("tok"))
	for i := 0; i < 5; i++ {
		if _, err := c.ListDevices(context.Background()); err == nil {
			t.Fatal("expected upstream error")
		}
	}
	if got := c.BreakerState(); got != "open" {
		t.Errorf("breaker state = %q, want open", got)
	}
}
