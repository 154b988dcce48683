package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Selector resolves the rate-limit store once per process. With a Redis URL
// configured it constructs the distributed store; on construction failure it
// logs and falls back to the in-process store; unconfigured it uses the
// in-process store directly.
type Selector struct {
	once     sync.Once
	store    Store
	kind     string
	redisURL string
	timeout  time.Duration
}

func NewSelector(redisURL string, timeout time.Duration) *Selector {
	return &Selector{redisURL: redisURL, timeout: timeout}
}

// Store returns the resolved store. The first call resolves; the sync.Once
// guard keeps concurrent first calls from racing on construction.
func (s *Selector) Store() Store {
	s.once.Do(s.resolve)
	return s.store
}

// Kind reports which store was selected: "redis" or "memory".
func (s *Selector) Kind() string {
	s.once.Do(s.resolve)
	return s.kind
}

func (s *Selector) resolve() {
	s.store, s.kind = s.build()
}

func (s *Selector) build() (Store, string) {
	if s.redisURL == "" {
		slog.Info("rate limiter using in-process store")
		return NewMemoryStore(), "memory"
	}

	opts, err := redis.ParseURL(s.redisURL)
	if err != nil {
		slog.Warn("invalid REDIS_URL, rate limiter falling back to in-process store", "error", err)
		return NewMemoryStore(), "memory"
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unreachable, rate limiter falling back to in-process store", "error", err)
		_ = client.Close()
		return NewMemoryStore(), "memory"
	}

	slog.Info("rate limiter using redis store")
	return NewRedisStore(client, s.timeout), "redis"
}
