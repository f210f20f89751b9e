package storage

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGuard_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGuard(time.Minute)

	ok, err := g.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, g.Release(ctx, "req-1"))

	ok, err = g.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryGuard_Expiry(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGuard(time.Minute)

	now := time.Date(2024, 5, 3, 10, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return now }

	ok, _ := g.Acquire(ctx, "req-1")
	require.True(t, ok)

	now = now.Add(time.Minute)
	ok, err := g.Acquire(ctx, "req-1")
	require.NoError(t, err)
	assert.True(t, ok, "expired key is reclaimable")
}

func TestMemoryGuard_Concurrent(t *testing.T) {
	ctx := context.Background()
	g := NewMemoryGuard(time.Minute)

	var wg sync.WaitGroup
	var successCount atomic.Int32
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := g.Acquire(ctx, "same"); ok {
				successCount.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load())
}
