package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr, client := newRedis(t)
	l := NewRedisLimiter(client, "contact", 5, time.Minute, zap.NewNop())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		assert.True(t, l.Allow(ctx, "1.2.3.4"), "call %d", i)
	}
	assert.False(t, l.Allow(ctx, "1.2.3.4"))

	val, err := mr.Get("ratelimit:contact:1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "5", val)

	mr.FastForward(time.Minute + time.Millisecond)
	assert.True(t, l.Allow(ctx, "1.2.3.4"))
	val, _ = mr.Get("ratelimit:contact:1.2.3.4")
	assert.Equal(t, "1", val)
}

func TestRedisLimiter_ScopesDoNotShareBudget(t *testing.T) {
	_, client := newRedis(t)
	contact := NewRedisLimiter(client, "contact", 1, time.Minute, nil)
	likes := NewRedisLimiter(client, "likes", 1, time.Minute, nil)
	ctx := context.Background()

	assert.True(t, contact.Allow(ctx, "k"))
	assert.False(t, contact.Allow(ctx, "k"))
	assert.True(t, likes.Allow(ctx, "k"))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	mr, client := newRedis(t)
	l := NewRedisLimiter(client, "contact", 1, time.Minute, zap.NewNop())
	mr.Close()
	assert.True(t, l.Allow(context.Background(), "k"))
	assert.True(t, l.Allow(context.Background(), "k"))
}
