package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDeniesOverLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := store.Check(ctx, "k", time.Minute, 3)
		require.NoError(t, err)
		assert.True(t, ok, "request %d should be admitted", i+1)
	}

	ok, err := store.Check(ctx, "k", time.Minute, 3)
	require.NoError(t, err)
	assert.False(t, ok, "fourth request within the window must be denied")
}

func TestMemoryStoreKeysAreIndependent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := store.Check(ctx, "a", time.Minute, 3)
		require.NoError(t, err)
	}

	ok, err := store.Check(ctx, "b", time.Minute, 3)
	require.NoError(t, err)
	assert.True(t, ok, "a saturated key must not affect other keys")
}

func TestMemoryStoreWindowSlides(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	clock := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		ok, err := store.Check(ctx, "k", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, ok)
	}

	ok, err := store.Check(ctx, "k", time.Minute, 3)
	require.NoError(t, err)
	require.False(t, ok)

	// Once the oldest hit leaves the window, capacity returns.
	clock = clock.Add(61 * time.Second)
	ok, err = store.Check(ctx, "k", time.Minute, 3)
	require.NoError(t, err)
	assert.True(t, ok, "requests re-admitted after the window slides past old hits")
}

func TestMemoryStoreConcurrentChecksNeverOverAdmit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	const workers = 20
	const max = 5
	var admitted atomic.Int64
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := store.Check(ctx, "k", time.Minute, max)
			assert.NoError(t, err)
			if ok {
				admitted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(max), admitted.Load())
}

func TestMemoryStoreCleanupDropsIdleKeys(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	clock := time.Unix(1_700_000_000, 0)
	store.now = func() time.Time { return clock }

	for i := 0; i < 10; i++ {
		_, err := store.Check(ctx, "stale", time.Minute, 100)
		require.NoError(t, err)
	}

	// All of "stale"'s hits age out, then enough traffic on another key to
	// cross the cleanup threshold.
	clock = clock.Add(2 * time.Minute)
	for i := 0; i < cleanupEvery+1; i++ {
		_, err := store.Check(ctx, "live", time.Minute, 10_000)
		require.NoError(t, err)
	}

	store.mu.Lock()
	_, staleExists := store.entries["stale"]
	store.mu.Unlock()
	assert.False(t, staleExists, "idle keys must be reclaimed by cleanup")

	// A reclaimed key starts fresh.
	ok, err := store.Check(ctx, "stale", time.Minute, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}
