package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/logger"
	"github.com/rl1809/aspas/internal/metrics"
	"github.com/rl1809/aspas/internal/port"
)

type reorderer interface {
	EvaluateAndReorder(ctx context.Context, sess domain.Session) ([]domain.ReorderEvent, error)
}

// SalesService records sales against current stock. There are two paths:
// a priced sale that stores the amount and triggers auto-reorder, and a
// customer sale that does neither.
type SalesService struct {
	store    port.LedgerStore
	audit    *AuditService
	reorder  reorderer
	guard    port.RequestGuard
	metrics  *metrics.Metrics
	settings Settings
}

func NewSalesService(
	store port.LedgerStore,
	audit *AuditService,
	reorder reorderer,
	guard port.RequestGuard,
	m *metrics.Metrics,
	settings Settings,
) *SalesService {
	return &SalesService{
		store:    store,
		audit:    audit,
		reorder:  reorder,
		guard:    guard,
		metrics:  m,
		settings: settings.withDefaults(),
	}
}

// RecordSale charges quantity × price, then runs auto-reorder.
func (s *SalesService) RecordSale(ctx context.Context, sess domain.Session, req domain.SaleRequest) (*domain.SaleReceipt, error) {
	return s.record(ctx, sess, req, true)
}

// RecordCustomerSale moves stock without recording an amount or reordering.
func (s *SalesService) RecordCustomerSale(ctx context.Context, sess domain.Session, req domain.SaleRequest) (*domain.SaleReceipt, error) {
	return s.record(ctx, sess, req, false)
}

func (s *SalesService) record(
	ctx context.Context,
	sess domain.Session,
	req domain.SaleRequest,
	chargePrice bool,
) (*domain.SaleReceipt, error) {
	const op = "service.SalesService.record"

	kind := domain.SaleKindCustomer
	if chargePrice {
		kind = domain.SaleKindPriced
	}

	if err := sess.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req.PartID = strings.TrimSpace(req.PartID)
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)
	if err := req.Validate(); err != nil {
		s.metrics.SaleRejected(rejectReason(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if req.RequestID != "" && s.guard != nil {
		ok, err := s.guard.Acquire(ctx, req.RequestID)
		if err != nil {
			return nil, fmt.Errorf("%s: idempotency check: %w: %w", op, domain.ErrStorage, err)
		}
		if !ok {
			s.metrics.SaleRejected(rejectReason(domain.ErrDuplicateRequest))
			return nil, fmt.Errorf("%s: %w", op, domain.ErrDuplicateRequest)
		}
	}

	receipt, err := s.commit(ctx, sess, req, kind)
	if err != nil {
		if req.RequestID != "" && s.guard != nil {
			if rerr := s.guard.Release(ctx, req.RequestID); rerr != nil {
				logger.Warn(ctx, "failed to release request key",
					logger.String("request_id", req.RequestID), logger.ErrorF(rerr))
			}
		}
		s.metrics.SaleRejected(rejectReason(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.SaleRecorded(string(kind))
	logger.Info(ctx, "sale recorded",
		logger.String("sale_id", receipt.SaleID),
		logger.String("kind", string(kind)),
		logger.String("part_id", receipt.PartID),
		logger.Int("quantity", receipt.Quantity),
	)

	if chargePrice && s.reorder != nil {
		events, err := s.reorder.EvaluateAndReorder(ctx, sess)
		if err != nil {
			logger.Error(ctx, "auto-reorder after sale failed",
				logger.String("sale_id", receipt.SaleID), logger.ErrorF(err))
		}
		receipt.Reorders = events
	}

	return receipt, nil
}

// commit performs lookup, stock check, decrement, sale insert and audit in
// one transaction.
func (s *SalesService) commit(
	ctx context.Context,
	sess domain.Session,
	req domain.SaleRequest,
	kind domain.SaleKind,
) (*domain.SaleReceipt, error) {
	var receipt *domain.SaleReceipt

	err := s.store.InTx(ctx, func(tx port.LedgerTx) error {
		part, err := tx.GetPart(ctx, req.PartID)
		if err != nil {
			return err
		}
		if req.Quantity > part.Stock {
			return domain.ErrInsufficientStock
		}

		sale := domain.Sale{
			ID:            s.settings.IDs.Sale(),
			PartID:        part.ID,
			Quantity:      req.Quantity,
			PaymentMethod: req.PaymentMethod,
			SoldAt:        s.settings.now(),
		}
		if kind == domain.SaleKindPriced {
			sale.Amount = decimal.NewNullDecimal(part.Price.Mul(decimal.NewFromInt(int64(req.Quantity))))
		}

		remaining, err := tx.DecrementStock(ctx, part.ID, req.Quantity)
		if err != nil {
			return err
		}
		if err := tx.InsertSale(ctx, sale); err != nil {
			return err
		}

		action, details := s.describe(sale, part)
		if _, err := s.audit.Append(ctx, tx, sess, action, details); err != nil {
			return err
		}

		receipt = &domain.SaleReceipt{
			SaleID:         sale.ID,
			Kind:           kind,
			PartID:         part.ID,
			PartName:       part.Name,
			Quantity:       sale.Quantity,
			Amount:         sale.Amount,
			RemainingStock: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return receipt, nil
}

func (s *SalesService) describe(sale domain.Sale, part *domain.Part) (domain.ActionType, string) {
	if sale.Amount.Valid {
		return domain.ActionRecordSale, fmt.Sprintf(
			"Sale recorded (ID: %s) for '%s' (ID: %s), Quantity: %d, Amount: %s%s",
			sale.ID, part.Name, part.ID, sale.Quantity, s.settings.CurrencySymbol, sale.Amount.Decimal.StringFixed(2))
	}
	return domain.ActionCustomerSale, fmt.Sprintf(
		"Customer sale recorded for '%s' (ID: %s), Quantity: %d", part.Name, part.ID, sale.Quantity)
}

// ListSales returns sales within the date prefix, newest first.
func (s *SalesService) ListSales(ctx context.Context, datePrefix string) ([]domain.Sale, error) {
	const op = "service.SalesService.ListSales"

	period, err := domain.PeriodFromPrefix(datePrefix, s.settings.Location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sales, err := s.store.ListSales(ctx, domain.SalesFilter{Period: period})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return sales, nil
}

// ListSaleLines is ListSales joined with each part's current unit price.
func (s *SalesService) ListSaleLines(ctx context.Context, datePrefix string) ([]domain.SaleLine, error) {
	const op = "service.SalesService.ListSaleLines"

	period, err := domain.PeriodFromPrefix(datePrefix, s.settings.Location)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines, err := s.store.ListSaleLines(ctx, domain.SalesFilter{Period: period})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lines, nil
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrDuplicateRequest):
		return "duplicate"
	case errors.Is(err, domain.ErrUnauthorized):
		return "unauthorized"
	default:
		return "storage"
	}
}
