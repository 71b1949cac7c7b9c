// Package devotp keeps the latest plain login code in memory for GET /dev/otp.
// Only wired when DEV_OTP_ENABLED is set outside production.
package devotp

import (
	"context"
	"sync"
	"time"

	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
)

// Store holds plain codes by username for dev-only retrieval.
type Store interface {
	// Put stores code for username until expiresAt, replacing any earlier code.
	Put(ctx context.Context, username, code string, expiresAt time.Time)
	// Get returns the code for username if present and not expired.
	Get(ctx context.Context, username string) (code string, expiresAt time.Time, ok bool)
	// Delete forgets the code for username, e.g. after it was consumed.
	Delete(ctx context.Context, username string)
}

type entry struct {
	code      string
	expiresAt time.Time
}

// MemoryStore is an in-memory Store implementation.
type MemoryStore struct {
	mu    sync.RWMutex
	m     map[string]entry
	clock clock.Clock
}

// NewMemoryStore returns a new in-memory dev code store. A nil clock uses wall time.
func NewMemoryStore(c clock.Clock) *MemoryStore {
	if c == nil {
		c = clock.Real{}
	}
	return &MemoryStore{
		m:     make(map[string]entry),
		clock: c,
	}
}

func (s *MemoryStore) Put(ctx context.Context, username, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[username] = entry{code: code, expiresAt: expiresAt}
}

// Get drops the entry when it has expired.
func (s *MemoryStore) Get(ctx context.Context, username string) (string, time.Time, bool) {
	s.mu.RLock()
	e, ok := s.m[username]
	s.mu.RUnlock()
	if !ok {
		return "", time.Time{}, false
	}
	if !e.expiresAt.After(s.clock.Now()) {
		s.Delete(ctx, username)
		return "", time.Time{}, false
	}
	return e.code, e.expiresAt, true
}

func (s *MemoryStore) Delete(ctx context.Context, username string) {
	s.mu.Lock()
	delete(s.m, username)
	s.mu.Unlock()
}
