// Package limiter provides Redis-backed request rate limiting.
package limiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Strategy decides whether one more request under key fits the limit.
type Strategy interface {
	Allow(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error)
}

// Manager applies a strategy against a Redis client. A manager without a
// client allows every request.
type Manager struct {
	rdb      *redis.Client
	strategy Strategy
	prefix   string
}

// NewManager builds a manager; prefix namespaces every key.
func NewManager(rdb *redis.Client, strategy Strategy, prefix string) *Manager {
	return &Manager{rdb: rdb, strategy: strategy, prefix: prefix}
}

// Allow reports whether the request identified by key may proceed.
func (m *Manager) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if m == nil || m.rdb == nil || limit <= 0 {
		return true, nil
	}
	return m.strategy.Allow(ctx, m.rdb, m.Key(key), limit, window)
}

// Key returns the namespaced Redis key.
func (m *Manager) Key(key string) string {
	if m.prefix == "" {
		return "limiter:" + key
	}
	return m.prefix + ":limiter:" + key
}

// FixedWindowStrategy counts requests in fixed windows with INCR and EXPIRE.
type FixedWindowStrategy struct{}

const fixedWindowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], tonumber(ARGV[2]))
end
if current > tonumber(ARGV[1]) then
	return 0
end
return 1
`

func (FixedWindowStrategy) Allow(ctx context.Context, rdb *redis.Client, key string, limit int, window time.Duration) (bool, error) {
	seconds := int(window.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	result, err := rdb.Eval(ctx, fixedWindowScript, []string{key}, limit, seconds).Int()
	if err != nil {
		return false, err
	}
	return result == 1, nil
}
