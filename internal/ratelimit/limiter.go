// Package ratelimit bounds how many requests a client may make to a route group per fixed window.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
)

// Defaults for public write endpoints: 5 requests per 60 seconds per client.
const (
	DefaultMax    = 5
	DefaultWindow = 60 * time.Second
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed-window counter held in process memory. Limits are per process.
type MemoryLimiter struct {
	mu        sync.Mutex
	entries   map[string]*entry
	max       int
	window    time.Duration
	clock     clock.Clock
	lastPrune time.Time
}

// NewMemoryLimiter returns a limiter allowing max requests per window per key.
// Non-positive values fall back to the defaults; a nil clock uses wall time.
func NewMemoryLimiter(max int, window time.Duration, c clock.Clock) *MemoryLimiter {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if c == nil {
		c = clock.Real{}
	}
	return &MemoryLimiter{
		entries:   make(map[string]*entry),
		max:       max,
		window:    window,
		clock:     c,
		lastPrune: c.Now(),
	}
}

// Allow starts a new window on the first request or once now passes resetAt, increments below
// the cap, and denies at the cap without counting the denied request.
func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	now := l.clock.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.window)}
		return true
	}
	if e.count < l.max {
		e.count++
		return true
	}
	return false
}

// Entry returns the current count and window end for key.
func (l *MemoryLimiter) Entry(key string) (count int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		return 0, time.Time{}, false
	}
	return e.count, e.resetAt, true
}

// Len returns the number of tracked keys.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// pruneLocked drops finished windows at most once per window length.
func (l *MemoryLimiter) pruneLocked(now time.Time) {
	if now.Sub(l.lastPrune) < l.window {
		return
	}
	for k, e := range l.entries {
		if now.After(e.resetAt) {
			delete(l.entries, k)
		}
	}
	l.lastPrune = now
}
