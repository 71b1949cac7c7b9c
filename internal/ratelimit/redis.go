package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// allowScript implements the fixed window in one round trip. INCR keeps the TTL set by the first request.
var allowScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if not current then
  redis.call('SET', KEYS[1], 1, 'PX', ARGV[1])
  return 1
end
if tonumber(current) < tonumber(ARGV[2]) then
  redis.call('INCR', KEYS[1])
  return 1
end
return 0
`)

// RedisLimiter shares one fixed-window budget across every instance connected to the same Redis.
// Redis errors fail open.
type RedisLimiter struct {
	client redis.Scripter
	prefix string
	max    int
	window time.Duration
	logger *zap.Logger
}

// NewRedisLimiter returns a limiter whose keys are namespaced by scope (e.g. "contact").
func NewRedisLimiter(client redis.Scripter, scope string, max int, window time.Duration, logger *zap.Logger) *RedisLimiter {
	if max <= 0 {
		max = DefaultMax
	}
	if window <= 0 {
		window = DefaultWindow
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisLimiter{client: client, prefix: "ratelimit:" + scope + ":", max: max, window: window, logger: logger}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) bool {
	res, err := allowScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds(), l.max).Int()
	if err != nil {
		l.logger.Warn("ratelimit: redis unavailable, allowing request", zap.String("scope", l.prefix), zap.Error(err))
		return true
	}
	return res == 1
}
