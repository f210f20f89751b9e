package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/logger"
	"github.com/rl1809/aspas/internal/metrics"
	"github.com/rl1809/aspas/internal/port"
)

const maxReorderAttempts = 3

// ReorderMonitor replenishes parts whose stock has fallen to the reorder
// threshold, a fraction of their initial stock.
type ReorderMonitor struct {
	store     port.LedgerStore
	audit     *AuditService
	notifiers []port.ReorderNotifier
	metrics   *metrics.Metrics
	settings  Settings
}

func NewReorderMonitor(
	store port.LedgerStore,
	audit *AuditService,
	settings Settings,
	m *metrics.Metrics,
	notifiers ...port.ReorderNotifier,
) *ReorderMonitor {
	return &ReorderMonitor{
		store:     store,
		audit:     audit,
		notifiers: notifiers,
		metrics:   m,
		settings:  settings.withDefaults(),
	}
}

// NeedsReorder reports whether stock is at or below the threshold. A part
// already at its initial stock never qualifies.
func (m *ReorderMonitor) NeedsReorder(p domain.Part) bool {
	if p.Stock >= p.InitialStock {
		return false
	}
	return float64(p.Stock) <= float64(p.InitialStock)*m.settings.ReorderRatio
}

// EvaluateAndReorder checks every part. Parts are handled independently: a
// failure on one does not stop the others, and all failures are returned.
func (m *ReorderMonitor) EvaluateAndReorder(ctx context.Context, sess domain.Session) ([]domain.ReorderEvent, error) {
	const op = "service.ReorderMonitor.EvaluateAndReorder"

	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	parts, err := m.store.ListParts(ctx, domain.PartFilter{})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		events []domain.ReorderEvent
		errs   []error
	)
	for _, p := range parts {
		if !m.NeedsReorder(p) {
			continue
		}

		event, err := m.reorderPart(ctx, sess, p.ID)
		if err != nil {
			m.metrics.ReorderFailed()
			errs = append(errs, fmt.Errorf("part %s: %w", p.ID, err))
			continue
		}
		if event == nil {
			continue
		}

		m.metrics.Reordered()
		events = append(events, *event)
		m.notify(ctx, *event)
	}

	if len(errs) > 0 {
		return events, fmt.Errorf("%s: %w", op, errors.Join(errs...))
	}
	return events, nil
}

// reorderPart re-reads the part inside its own transaction and resets stock
// under a version check, retrying when a concurrent sale wins the race.
func (m *ReorderMonitor) reorderPart(ctx context.Context, sess domain.Session, id string) (*domain.ReorderEvent, error) {
	for attempt := 0; attempt < maxReorderAttempts; attempt++ {
		var event *domain.ReorderEvent

		err := m.store.InTx(ctx, func(tx port.LedgerTx) error {
			part, err := tx.GetPart(ctx, id)
			if errors.Is(err, domain.ErrNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if !m.NeedsReorder(*part) {
				return nil
			}

			if err := tx.UpdateStock(ctx, part.ID, part.InitialStock, part.Version); err != nil {
				return err
			}

			details := fmt.Sprintf("Auto-reorder triggered for '%s' (ID: %s). Stock updated from %d to %d",
				part.Name, part.ID, part.Stock, part.InitialStock)
			entry, err := m.audit.Append(ctx, tx, sess, domain.ActionAutoReorder, details)
			if err != nil {
				return err
			}

			event = &domain.ReorderEvent{
				PartID:   part.ID,
				PartName: part.Name,
				OldStock: part.Stock,
				NewStock: part.InitialStock,
				At:       entry.LoggedAt,
			}
			return nil
		})
		if errors.Is(err, domain.ErrOptimisticLock) {
			logger.Warn(ctx, "reorder lost version race, retrying",
				logger.String("part_id", id), logger.Int("attempt", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		return event, nil
	}
	return nil, fmt.Errorf("gave up after %d attempts: %w", maxReorderAttempts, domain.ErrOptimisticLock)
}

func (m *ReorderMonitor) notify(ctx context.Context, event domain.ReorderEvent) {
	for _, n := range m.notifiers {
		if err := n.NotifyReorder(ctx, event); err != nil {
			logger.Error(ctx, "reorder notification failed",
				logger.String("part_id", event.PartID), logger.ErrorF(err))
		}
	}
}
