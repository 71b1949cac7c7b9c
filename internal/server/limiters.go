package server

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jaehkim-quant/research-platform/internal/platform/clock"
	"github.com/jaehkim-quant/research-platform/internal/ratelimit"
)

// NewLimiters builds one limiter per guarded route group. When redisURL is set the budgets are
// shared across replicas through Redis; otherwise each process keeps its own in-memory windows.
// The returned close func releases the Redis client and is safe to call when none was opened.
func NewLimiters(redisURL string, max int, window time.Duration, clk clock.Clock, logger *zap.Logger) (Limiters, func() error, error) {
	if redisURL == "" {
		return Limiters{
			Auth:     ratelimit.NewMemoryLimiter(max, window, clk),
			Contact:  ratelimit.NewMemoryLimiter(max, window, clk),
			Comments: ratelimit.NewMemoryLimiter(max, window, clk),
			Likes:    ratelimit.NewMemoryLimiter(max, window, clk),
		}, func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return Limiters{}, nil, fmt.Errorf("parse RATE_LIMIT_REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	return Limiters{
		Auth:     ratelimit.NewRedisLimiter(client, "auth", max, window, logger),
		Contact:  ratelimit.NewRedisLimiter(client, "contact", max, window, logger),
		Comments: ratelimit.NewRedisLimiter(client, "comments", max, window, logger),
		Likes:    ratelimit.NewRedisLimiter(client, "likes", max, window, logger),
	}, client.Close, nil
}
