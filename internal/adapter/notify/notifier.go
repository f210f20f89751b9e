package notify

import (
	"context"
	"errors"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/logger"
	"github.com/rl1809/aspas/internal/port"
)

// Log writes each reorder event to the process log. It is the notice the
// operator sees when no presentation client is listening.
type Log struct{}

var _ port.ReorderNotifier = Log{}

func (Log) NotifyReorder(ctx context.Context, event domain.ReorderEvent) error {
	logger.Info(ctx, "auto-reorder",
		logger.String("part_id", event.PartID),
		logger.String("part_name", event.PartName),
		logger.Int("old_stock", event.OldStock),
		logger.Int("new_stock", event.NewStock),
	)
	return nil
}

// Multi delivers to every notifier even if some fail, and joins the errors.
type Multi []port.ReorderNotifier

var _ port.ReorderNotifier = Multi(nil)

func (m Multi) NotifyReorder(ctx context.Context, event domain.ReorderEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.NotifyReorder(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Forward hands events arriving on ch, such as a Redis subscription, to n
// until ch closes or ctx is done.
func Forward(ctx context.Context, ch <-chan domain.ReorderEvent, n port.ReorderNotifier) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			if err := n.NotifyReorder(ctx, event); err != nil {
				logger.Warn(ctx, "forward reorder event", logger.String("part_id", event.PartID), logger.ErrorF(err))
			}
		}
	}
}
