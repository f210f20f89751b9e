package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/aspas/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisAcquire_Success(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, "")
	key := "test-" + uuid.NewString()

	// First call should succeed
	ok, err := adapter.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected first call to succeed")
	}

	// Second call should fail (key held)
	ok, err = adapter.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected second call to fail")
	}

	ttl := client.TTL(ctx, idempotencyKeyPrefix+key).Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl within a minute, got %v", ttl)
	}
}

func TestRedisRelease(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, "")
	key := "test-" + uuid.NewString()

	if _, err := adapter.Acquire(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := adapter.Release(ctx, key); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ok, err := adapter.Acquire(ctx, key)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected key to be free after release")
	}
}

func TestRedisAcquire_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute, "")
	key := "concurrent-" + uuid.NewString()

	var successCount atomic.Int32
	var wg sync.WaitGroup
	concurrency := 100

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := adapter.Acquire(ctx, key)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if ok {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	// Only one should succeed
	if successCount.Load() != 1 {
		t.Errorf("expected exactly 1 success, got %d", successCount.Load())
	}
}

func TestRedisNotifyReorder_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	adapter := NewRedisAdapter(client, time.Minute, "test:reorders:"+uuid.NewString())

	events, err := adapter.SubscribeReorders(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sent := domain.ReorderEvent{
		PartID:   "I-TEST0001",
		PartName: "Brake pad",
		OldStock: 25,
		NewStock: 100,
		At:       time.Now().UTC().Truncate(time.Second),
	}
	if err := adapter.NotifyReorder(ctx, sent); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-events:
		if got.PartID != sent.PartID || got.OldStock != 25 || got.NewStock != 100 {
			t.Errorf("unexpected event: %+v", got)
		}
		if !got.At.Equal(sent.At) {
			t.Errorf("expected at %v, got %v", sent.At, got.At)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for reorder event")
	}
}
