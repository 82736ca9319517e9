// Woodson Zoom Dashboard - Zoom Phone Operations Dashboard
// Copyright 2026 J. Hejl (jhejl10)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jhejl10/woodson-zoom-dashboard-sub000

// Package queue serializes outbound Zoom API calls through a single-worker
// FIFO drain loop with a fixed pacing delay between items and a soft
// rate-limit throttle in front of each item.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/logging"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/metrics"
	"github.com/jhejl10/woodson-zoom-dashboard-sub000/internal/ratelimit"
)

// Task is one unit of outbound work. The context carries transport
// deadlines only; queued tasks are never canceled by their enqueuer.
type Task func(ctx context.Context) (interface{}, error)

// result settles one queued item.
type result struct {
	value interface{}
	err   error
}

// item is a queued task plus the channel its waiter is parked on.
type item struct {
	key  string
	task Task
	done chan result
}

// Queue is a single-concurrency FIFO request queue.
//
// Exactly one item is in flight at a time. After each item completes the
// worker sleeps a fixed pacing delay. Before each item runs, the shared
// fixed-window limiter is consulted; when over budget the worker sleeps one
// full window and then runs the item anyway (soft throttle, not a reject).
// An item's failure settles only that item's waiter; the drain continues.
type Queue struct {
	mu       sync.Mutex
	items    []*item
	draining bool

	limiter *ratelimit.Limiter
	pacing  time.Duration
}

// New creates a Queue paced by the given delay and gated by the limiter.
func New(limiter *ratelimit.Limiter, pacing time.Duration) *Queue {
	if pacing <= 0 {
		pacing = 100 * time.Millisecond
	}
	return &Queue{
		limiter: limiter,
		pacing:  pacing,
	}
}

// Enqueue appends the task and blocks until it settles.
//
// The caller's context guards only the wait: when it is canceled the call
// returns ctx.Err() but the task itself still runs in its queue position
// (in-flight work is never canceled; see the cache's generation counters
// for how stale results are discarded).
func (q *Queue) Enqueue(ctx context.Context, key string, task Task) (interface{}, error) {
	it := &item{
		key:  key,
		task: task,
		done: make(chan result, 1),
	}

	q.mu.Lock()
	q.items = append(q.items, it)
	depth := len(q.items)
	start := !q.draining
	if start {
		q.draining = true
	}
	q.mu.Unlock()

	metrics.QueueDepth.Set(float64(depth))

	if start {
		go q.drain()
	}

	select {
	case r := <-it.done:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of items waiting (not counting the one in flight).
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// drain processes queued items until the list empties. At most one drain
// runs at a time, guarded by the draining flag.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.items) == 0 {
			q.draining = false
			q.mu.Unlock()
			metrics.QueueDepth.Set(0)
			return
		}
		it := q.items[0]
		q.items = q.items[1:]
		depth := len(q.items)
		q.mu.Unlock()

		metrics.QueueDepth.Set(float64(depth))

		if q.limiter.Limited(ratelimit.SharedKey) {
			metrics.RateLimitDeferrals.Inc()
			logging.Debug().
				Str("key", it.key).
				Dur("deferral", q.limiter.Window()).
				Msg("rate limited, deferring queued request")
			time.Sleep(q.limiter.Window())
		}

		q.run(it)

		time.Sleep(q.pacing)
	}
}

// run executes one item, containing panics and settling its waiter.
func (q *Queue) run(it *item) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error().
				Str("key", it.key).
				Interface("panic", r).
				Msg("queued request panicked")
			it.done <- result{err: fmt.Errorf("queued request panicked: %v", r)}
		}
	}()

	// Tasks run detached from their enqueuer's context: a caller giving up
	// must not cancel a fetch whose result is still useful to the cache.
	value, err := it.task(context.Background())
	if err != nil {
		logging.Warn().Err(err).Str("key", it.key).Msg("queued request failed")
	}
	it.done <- result{value: value, err: err}
}
