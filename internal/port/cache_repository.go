package port

import (
	"context"

	"github.com/rl1809/aspas/internal/core/domain"
)

type RequestGuard interface {
	// Acquire claims an idempotency key, returns false if it is already held
	Acquire(ctx context.Context, key string) (bool, error)

	// Release frees a key so the request may be retried
	Release(ctx context.Context, key string) error
}

type ReorderNotifier interface {
	// NotifyReorder announces a committed auto-reorder
	NotifyReorder(ctx context.Context, event domain.ReorderEvent) error
}
