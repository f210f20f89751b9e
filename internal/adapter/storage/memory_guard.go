package storage

import (
	"context"
	"sync"
	"time"

	"github.com/rl1809/aspas/internal/port"
)

// MemoryGuard is the in-process RequestGuard used when Redis is not configured.
type MemoryGuard struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]time.Time
	now  func() time.Time
}

var _ port.RequestGuard = (*MemoryGuard)(nil)

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &MemoryGuard{ttl: ttl, keys: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.keys {
		if !now.Before(exp) {
			delete(g.keys, k)
		}
	}

	if _, held := g.keys[key]; held {
		return false, nil
	}
	g.keys[key] = now.Add(g.ttl)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.keys, key)
	return nil
}
