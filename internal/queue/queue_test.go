// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/ratelimit"
)

func permissiveQueue() *Queue {
	return New(ratelimit.New(1000, time.Second), time.Millisecond)
}

func TestFIFOOrder(t *testing.T) {
	q := permissiveQueue()
	ctx := context.Background()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		n := i
		go func() {
			defer wg.Done()
			_, _ = q.Enqueue(ctx, "t", func(ctx context.Context) (interface{}, error) {
				mu.Lock()
				order = append(order, n)
				mu.Unlock()
				return n, nil
			})
		}()
		// Stagger the enqueues so arrival order is deterministic.
		time.Sleep(10 * time.Millisecond)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	for i, n := range order {
		if n != i {
			t.Fatalf("execution order = %v", order)
		}
	}
}

func TestFailureSettlesOnlyItsWaiter(t *testing.T) {
	q := permissiveQueue()
	ctx := context.Background()
	boom := errors.New("fetch failed")

	if _, err := q.Enqueue(ctx, "bad", func(ctx context.Context) (interface{}, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	v, err := q.Enqueue(ctx, "good", func(ctx context.Context) (interface{}, error) {
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("queue stopped draining after a failure: %v", err)
	}
	if v != "ok" {
		t.Fatalf("v = %v", v)
	}
}

func TestPanicIsContained(t *testing.T) {
	q := permissiveQueue()
	ctx := context.Background()

	_, err := q.Enqueue(ctx, "panics", func(ctx context.Context) (interface{}, error) {
		panic("boom")
	})
	if err == nil {
		t.Fatal("panicking task settled without error")
	}

	if _, err := q.Enqueue(ctx, "after", func(ctx context.Context) (interface{}, error) {
		return 1, nil
	}); err != nil {
		t.Fatalf("queue dead after panic: %v", err)
	}
}

func TestCanceledWaiterDoesNotCancelTask(t *testing.T) {
	q := permissiveQueue()

	ran := make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := q.Enqueue(ctx, "detached", func(ctx context.Context) (interface{}, error) {
		close(ran)
		return nil, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run after waiter gave up")
	}
}

func TestEleventhRequestDefersOneWindow(t *testing.T) {
	limiter := ratelimit.New(10, time.Second)
	q := New(limiter, time.Millisecond)
	ctx := context.Background()

	var mu sync.Mutex
	var completions []time.Time
	var wg sync.WaitGroup

	for i := 0; i < 11; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = q.Enqueue(ctx, "burst", func(ctx context.Context) (interface{}, error) {
				mu.Lock()
				completions = append(completions, time.Now())
				mu.Unlock()
				return nil, nil
			})
		}()
		time.Sleep(2 * time.Millisecond)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(completions) != 11 {
		t.Fatalf("completed %d tasks", len(completions))
	}
	gap := completions[10].Sub(completions[9])
	if gap < 800*time.Millisecond {
		t.Errorf("11th task ran %v after the 10th, want ~1s deferral", gap)
	}
	if gap > 2*time.Second {
		t.Errorf("11th task deferred %v, too long", gap)
	}
}
