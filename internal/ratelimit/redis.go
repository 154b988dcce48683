package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any Redis transport or scripting failure. The
// Limiter absorbs it by failing open.
var ErrRedisUnavailable = errors.New("redis unavailable")

// checkScript runs the whole sliding-window decision server-side in one
// atomic step: prune entries older than the window, count the remainder,
// deny without mutating when at the limit, otherwise record the hit and
// refresh the key's expiry.
//
// KEYS[1] = window key; ARGV[1] = now (ms), ARGV[2] = window (ms),
// ARGV[3] = max, ARGV[4] = unique member tag.
const checkScript = `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local cutoff = now - window

redis.call("ZREMRANGEBYSCORE", KEYS[1], "-inf", "(" .. cutoff)
local count = redis.call("ZCARD", KEYS[1])
if count >= max then
  return 0
end

redis.call("ZADD", KEYS[1], now, ARGV[4])
redis.call("PEXPIRE", KEYS[1], window)
return 1
`

var checkLua = redis.NewScript(checkScript)

// RedisStore is the distributed sliding-window store for multi-instance
// deployments. Atomicity comes from the server-side script; no client-side
// locking is needed.
type RedisStore struct {
	redis   redis.UniversalClient
	prefix  string
	timeout time.Duration
}

func NewRedisStore(redisClient redis.UniversalClient, timeout time.Duration) *RedisStore {
	return &RedisStore{
		redis:   redisClient,
		prefix:  "rl:",
		timeout: timeout,
	}
}

func (s *RedisStore) Check(ctx context.Context, key string, window time.Duration, max int) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	res, err := checkLua.Run(
		ctx,
		s.redis,
		[]string{s.prefix + key},
		time.Now().UnixMilli(),
		window.Milliseconds(),
		max,
		uuid.NewString(),
	).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return res == 1, nil
}
