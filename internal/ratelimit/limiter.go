package ratelimit

import (
	"errors"
	"fmt"
	"time"

	"github.com/wanjohi/rent-reconciler/pkg/logger"
	"github.com/wanjohi/rent-reconciler/pkg/redis"
)

var ErrLimitExceeded = errors.New("rate limit exceeded")

// Limiter is a fixed-window counter backed by Redis. State lives in Redis so
// every API instance shares the same window per owner.
type Limiter struct {
	redis  redis.RedisAdapter
	prefix string
	limit  int64
	window time.Duration
}

func NewLimiter(adapter redis.RedisAdapter, prefix string, limit int64, window time.Duration) *Limiter {
	return &Limiter{
		redis:  adapter,
		prefix: prefix,
		limit:  limit,
		window: window,
	}
}

// Allow counts one hit for the key and reports whether it is still inside the
// window's budget. A Redis outage fails open so payment notifications are
// never dropped; the error is returned for the caller to log.
func (l *Limiter) Allow(key string) (bool, error) {
	windowKey := l.windowKey(key)

	count, err := l.redis.Incr(windowKey)
	if err != nil {
		logger.Warn("Rate limiter unavailable, allowing request", "key", key, "error", err)
		return true, err
	}
	if count == 1 {
		if err := l.redis.Expire(windowKey, l.window); err != nil {
			logger.Warn("Rate limiter expire failed", "key", windowKey, "error", err)
		}
	}
	return count <= l.limit, nil
}

// Remaining reports how much of the window's budget is left.
func (l *Limiter) Remaining(key string) (int64, error) {
	windowKey := l.windowKey(key)
	raw, err := l.redis.Get(windowKey)
	if err != nil {
		if err == redis.NilError {
			return l.limit, nil
		}
		return 0, err
	}
	var count int64
	fmt.Sscanf(string(raw), "%d", &count)
	if count >= l.limit {
		return 0, nil
	}
	return l.limit - count, nil
}

func (l *Limiter) windowKey(key string) string {
	window := time.Now().Unix() / int64(l.window.Seconds())
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, window)
}
