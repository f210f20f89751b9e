package storage

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/port"
)

type sqlTx struct {
	q querier
	a *SQLAdapter
}

var _ port.LedgerTx = (*sqlTx)(nil)

func (t *sqlTx) GetPart(ctx context.Context, id string) (*domain.Part, error) {
	return t.a.getPart(ctx, t.q, id)
}

func (t *sqlTx) ListParts(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error) {
	return t.a.listParts(ctx, t.q, filter)
}

func (t *sqlTx) InsertPart(ctx context.Context, p domain.Part) error {
	return t.insert(ctx, "insert part", t.a.sb.Insert("inventory").Columns(partColumns...).Values(
		p.ID, p.Name, p.Manufacturer, p.VehicleType, p.Stock, p.Price,
		p.InitialStock, p.Version, p.CreatedAt.UTC(), p.UpdatedAt.UTC(),
	))
}

func (t *sqlTx) DeletePart(ctx context.Context, id string) error {
	query, args, err := t.a.sb.Delete("inventory").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete part: %w", err)
	}

	result, err := t.q.ExecContext(ctx, query, args...)
	if err != nil {
		return t.a.wrap("delete part", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("part %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (t *sqlTx) DecrementStock(ctx context.Context, id string, quantity int) (int, error) {
	result, err := t.q.ExecContext(ctx, `
		UPDATE inventory
		SET stock = stock - ?, version = version + 1, updated_at = ?
		WHERE id = ? AND stock >= ?`,
		quantity, t.a.now(), id, quantity,
	)
	if err != nil {
		return 0, t.a.wrap("decrement stock", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		if _, err := t.GetPart(ctx, id); err != nil {
			return 0, err
		}
		return 0, domain.ErrInsufficientStock
	}

	var stock int
	if err := t.q.QueryRowContext(ctx, `SELECT stock FROM inventory WHERE id = ?`, id).Scan(&stock); err != nil {
		return 0, t.a.wrap("read stock", err)
	}
	return stock, nil
}

func (t *sqlTx) UpdateStock(ctx context.Context, id string, stock, version int) error {
	result, err := t.q.ExecContext(ctx, `
		UPDATE inventory
		SET stock = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		stock, t.a.now(), id, version,
	)
	if err != nil {
		return t.a.wrap("update stock", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrOptimisticLock
	}
	return nil
}

func (t *sqlTx) InsertSale(ctx context.Context, s domain.Sale) error {
	return t.insert(ctx, "insert sale", t.a.sb.Insert("sales").Columns(saleColumns...).Values(
		s.ID, s.PartID, s.Quantity, s.Amount, s.PaymentMethod, s.SoldAt.UTC(),
	))
}

func (t *sqlTx) InsertVendor(ctx context.Context, v domain.Vendor) error {
	return t.insert(ctx, "insert vendor", t.a.sb.Insert("vendors").Columns(vendorColumns...).Values(
		v.ID, v.Name, v.Contact, v.Parts, v.CreatedAt.UTC(),
	))
}

func (t *sqlTx) InsertUser(ctx context.Context, u domain.User) error {
	return t.insert(ctx, "insert user", t.a.sb.Insert("users").
		Columns("username", "password_hash", "role").
		Values(u.Username, u.PasswordHash, string(u.Role)))
}

func (t *sqlTx) AppendAudit(ctx context.Context, e domain.AuditEntry) error {
	return t.insert(ctx, "append audit", t.a.sb.Insert("audit_log").Columns(auditColumns...).Values(
		e.ID, string(e.Action), e.Details, e.LoggedAt.UTC(), e.Username, string(e.Role),
	))
}

func (t *sqlTx) insert(ctx context.Context, what string, b sq.InsertBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("build %s: %w", what, err)
	}
	if _, err := t.q.ExecContext(ctx, query, args...); err != nil {
		return t.a.wrap(what, err)
	}
	return nil
}
