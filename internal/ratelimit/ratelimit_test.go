// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package ratelimit

import (
	"testing"
	"time"
)

func TestBudgetWithinWindow(t *testing.T) {
	l := New(10, time.Second)

	for i := 0; i < 10; i++ {
		if l.Limited(SharedKey) {
			t.Fatalf("call %d limited within budget", i+1)
		}
	}
	if !l.Limited(SharedKey) {
		t.Fatal("11th call not limited")
	}
	// Rejected calls must not consume budget.
	if count, _, _ := l.WindowState(SharedKey); count != 10 {
		t.Errorf("count = %d after rejected call, want 10", count)
	}
}

func TestWindowReset(t *testing.T) {
	now := time.Unix(1756713600, 0)
	l := New(2, time.Second)
	l.SetNowFunc(func() time.Time { return now })

	l.Limited("k")
	l.Limited("k")
	if !l.Limited("k") {
		t.Fatal("over-budget call not limited")
	}

	// One window later the key starts fresh.
	now = now.Add(1100 * time.Millisecond)
	if l.Limited("k") {
		t.Fatal("call limited after window elapsed")
	}
	count, reset, ok := l.WindowState("k")
	if !ok || count != 1 {
		t.Errorf("count = %d after reset, want 1", count)
	}
	if want := now.Add(time.Second); !reset.Equal(want) {
		t.Errorf("resetTime = %v, want %v", reset, want)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New(1, time.Second)

	if l.Limited("a") {
		t.Fatal("first call on a limited")
	}
	if l.Limited("b") {
		t.Fatal("first call on b limited")
	}
	if !l.Limited("a") {
		t.Fatal("second call on a not limited")
	}
}

func TestWindowStateUnknownKey(t *testing.T) {
	l := New(1, time.Second)
	if _, _, ok := l.WindowState("never-seen"); ok {
		t.Fatal("unknown key reported as present")
	}
}
