package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
)

var t0 = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	c := clock.NewFake(t0)
	l := NewMemoryLimiter(5, time.Minute, c)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4"), "call %d should be allowed", i)
	}
	assert.False(t, l.Allow(ctx, "1.2.3.4"), "6th call should be denied")

	count, resetAt, ok := l.Entry("1.2.3.4")
	require.True(t, ok)
	assert.Equal(t, 5, count, "denied calls are not counted")
	assert.Equal(t, t0.Add(time.Minute), resetAt)

	c.Advance(time.Minute + time.Millisecond)
	assert.True(t, l.Allow(ctx, "1.2.3.4"), "first call after resetAt should be allowed")
	count, resetAt, _ = l.Entry("1.2.3.4")
	assert.Equal(t, 1, count)
	assert.Equal(t, c.Now().Add(time.Minute), resetAt)
}

func TestMemoryLimiter_ResetAtBoundaryStillInWindow(t *testing.T) {
	c := clock.NewFake(t0)
	l := NewMemoryLimiter(1, time.Minute, c)
	ctx := context.Background()

	require.True(t, l.Allow(ctx, "k"))
	c.Advance(time.Minute)
	assert.False(t, l.Allow(ctx, "k"), "window ends strictly after resetAt")
	c.Advance(time.Nanosecond)
	assert.True(t, l.Allow(ctx, "k"))
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	l := NewMemoryLimiter(1, time.Minute, clock.NewFake(t0))
	ctx := context.Background()
	assert.True(t, l.Allow(ctx, "a"))
	assert.False(t, l.Allow(ctx, "a"))
	assert.True(t, l.Allow(ctx, "b"))
}

func TestMemoryLimiter_Defaults(t *testing.T) {
	l := NewMemoryLimiter(0, 0, nil)
	ctx := context.Background()
	for i := 0; i < DefaultMax; i++ {
		require.True(t, l.Allow(ctx, "k"))
	}
	assert.False(t, l.Allow(ctx, "k"))
}

func TestMemoryLimiter_PrunesFinishedWindows(t *testing.T) {
	c := clock.NewFake(t0)
	l := NewMemoryLimiter(5, time.Minute, c)
	ctx := context.Background()
	for i := 0; i < 100; i++ {
		l.Allow(ctx, fmt.Sprintf("10.0.0.%d", i))
	}
	require.Equal(t, 100, l.Len())

	c.Advance(2 * time.Minute)
	l.Allow(ctx, "fresh")
	assert.Equal(t, 1, l.Len())
}

func TestMemoryLimiter_ConcurrentCallsNeverExceedCap(t *testing.T) {
	l := NewMemoryLimiter(5, time.Minute, clock.NewFake(t0))
	ctx := context.Background()
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow(ctx, "burst") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, allowed)
}
