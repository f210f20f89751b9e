package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/port"
)

// Dialect captures what differs between the supported SQL engines.
type Dialect struct {
	name         string
	goose        goose.Dialect
	isConstraint func(error) bool
}

func (d Dialect) Name() string { return d.name }

var partColumns = []string{
	"id", "part_name", "manufacturer", "vehicle_type", "stock", "price",
	"initial_stock", "version", "created_at", "updated_at",
}

var saleColumns = []string{"id", "part_id", "quantity", "amount", "payment_method", "sold_at"}

var vendorColumns = []string{"id", "name", "contact", "parts", "created_at"}

var auditColumns = []string{"id", "action_type", "details", "logged_at", "username", "user_role"}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

// SQLAdapter is the Ledger Store over database/sql. The same queries serve
// SQLite and MySQL; only error classification and migrations differ.
type SQLAdapter struct {
	db      *sql.DB
	dialect Dialect
	sb      sq.StatementBuilderType
	now     func() time.Time
}

var _ port.LedgerStore = (*SQLAdapter)(nil)

func NewSQLAdapter(db *sql.DB, dialect Dialect) *SQLAdapter {
	return &SQLAdapter{
		db:      db,
		dialect: dialect,
		sb:      sq.StatementBuilder.PlaceholderFormat(sq.Question),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (a *SQLAdapter) DB() *sql.DB { return a.db }

func (a *SQLAdapter) Dialect() Dialect { return a.dialect }

func (a *SQLAdapter) Ping(ctx context.Context) error {
	if err := a.db.PingContext(ctx); err != nil {
		return a.wrap("ping", err)
	}
	return nil
}

func (a *SQLAdapter) Close() error { return a.db.Close() }

func (a *SQLAdapter) InTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return a.wrap("begin tx", err)
	}
	defer tx.Rollback()

	if err := fn(&sqlTx{q: tx, a: a}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return a.wrap("commit", err)
	}
	return nil
}

func (a *SQLAdapter) GetPart(ctx context.Context, id string) (*domain.Part, error) {
	return a.getPart(ctx, a.db, id)
}

func (a *SQLAdapter) ListParts(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error) {
	return a.listParts(ctx, a.db, filter)
}

func (a *SQLAdapter) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	query, args, err := a.sb.Select(vendorColumns...).From("vendors").OrderBy("name", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build vendors query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, a.wrap("query vendors", err)
	}
	defer rows.Close()

	var vendors []domain.Vendor
	for rows.Next() {
		var v domain.Vendor
		if err := rows.Scan(&v.ID, &v.Name, &v.Contact, &v.Parts, &v.CreatedAt); err != nil {
			return nil, a.wrap("scan vendor", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, a.wrap("iterate vendors", err)
	}
	return vendors, nil
}

func (a *SQLAdapter) ListSales(ctx context.Context, filter domain.SalesFilter) ([]domain.Sale, error) {
	q := applySalesFilter(a.sb.Select(saleColumns...).From("sales"), filter, "").
		OrderBy("sold_at DESC", "id DESC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sales query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, a.wrap("query sales", err)
	}
	defer rows.Close()

	var sales []domain.Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, a.wrap("scan sale", err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, a.wrap("iterate sales", err)
	}
	return sales, nil
}

func (a *SQLAdapter) ListSaleLines(ctx context.Context, filter domain.SalesFilter) ([]domain.SaleLine, error) {
	q := a.sb.Select(
		"s.id", "s.part_id", "s.quantity", "s.amount", "s.payment_method", "s.sold_at",
		"COALESCE(i.part_name, '')", "i.price",
	).From("sales s").LeftJoin("inventory i ON i.id = s.part_id")
	q = applySalesFilter(q, filter, "s.").OrderBy("s.sold_at DESC", "s.id DESC")

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build sale lines query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, a.wrap("query sale lines", err)
	}
	defer rows.Close()

	var lines []domain.SaleLine
	for rows.Next() {
		var l domain.SaleLine
		err := rows.Scan(&l.ID, &l.PartID, &l.Quantity, &l.Amount, &l.PaymentMethod, &l.SoldAt,
			&l.PartName, &l.UnitPrice)
		if err != nil {
			return nil, a.wrap("scan sale line", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, a.wrap("iterate sale lines", err)
	}
	return lines, nil
}

func (a *SQLAdapter) QueryAudit(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	q := a.sb.Select(auditColumns...).From("audit_log")
	if filter.Action != "" {
		q = q.Where(sq.Eq{"action_type": string(filter.Action)})
	}
	if filter.Username != "" {
		q = q.Where(sq.Eq{"username": filter.Username})
	}
	if filter.Period != nil {
		q = q.Where(sq.GtOrEq{"logged_at": filter.Period.From.UTC()}).
			Where(sq.Lt{"logged_at": filter.Period.To.UTC()})
	}
	q = q.OrderBy("logged_at DESC", "seq DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build audit query: %w", err)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, a.wrap("query audit log", err)
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var (
			e      domain.AuditEntry
			action string
			role   string
		)
		if err := rows.Scan(&e.ID, &action, &e.Details, &e.LoggedAt, &e.Username, &role); err != nil {
			return nil, a.wrap("scan audit entry", err)
		}
		e.Action = domain.ActionType(action)
		e.Role = domain.Role(role)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, a.wrap("iterate audit log", err)
	}
	return entries, nil
}

func (a *SQLAdapter) FindUser(ctx context.Context, username string) (*domain.User, error) {
	query, args, err := a.sb.Select("username", "password_hash", "role").
		From("users").Where(sq.Eq{"username": username}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var (
		u    domain.User
		role string
	)
	err = a.db.QueryRowContext(ctx, query, args...).Scan(&u.Username, &u.PasswordHash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
	}
	if err != nil {
		return nil, a.wrap("query user", err)
	}
	u.Role = domain.Role(role)
	return &u, nil
}

func (a *SQLAdapter) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, a.wrap("count users", err)
	}
	return n, nil
}

func (a *SQLAdapter) getPart(ctx context.Context, q querier, id string) (*domain.Part, error) {
	query, args, err := a.sb.Select(partColumns...).From("inventory").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build part query: %w", err)
	}

	p, err := scanPart(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("part %q: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, a.wrap("query part", err)
	}
	return &p, nil
}

func (a *SQLAdapter) listParts(ctx context.Context, q querier, filter domain.PartFilter) ([]domain.Part, error) {
	b := a.sb.Select(partColumns...).From("inventory").OrderBy("part_name", "id")
	if filter.InStockOnly {
		b = b.Where(sq.Gt{"stock": 0})
	}

	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build parts query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, a.wrap("query parts", err)
	}
	defer rows.Close()

	var parts []domain.Part
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, a.wrap("scan part", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, a.wrap("iterate parts", err)
	}
	return parts, nil
}

// wrap tags a driver error with the taxonomy sentinel it belongs to.
func (a *SQLAdapter) wrap(what string, err error) error {
	if a.dialect.isConstraint != nil && a.dialect.isConstraint(err) {
		return fmt.Errorf("%s: %w: %w", what, domain.ErrConstraintViolation, err)
	}
	return fmt.Errorf("%s: %w: %w", what, domain.ErrStorage, err)
}

func applySalesFilter(q sq.SelectBuilder, filter domain.SalesFilter, alias string) sq.SelectBuilder {
	if filter.PartID != "" {
		q = q.Where(sq.Eq{alias + "part_id": filter.PartID})
	}
	if filter.Period != nil {
		q = q.Where(sq.GtOrEq{alias + "sold_at": filter.Period.From.UTC()}).
			Where(sq.Lt{alias + "sold_at": filter.Period.To.UTC()})
	}
	return q
}

func scanPart(row rowScanner) (domain.Part, error) {
	var p domain.Part
	err := row.Scan(&p.ID, &p.Name, &p.Manufacturer, &p.VehicleType, &p.Stock, &p.Price,
		&p.InitialStock, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func scanSale(row rowScanner) (domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(&s.ID, &s.PartID, &s.Quantity, &s.Amount, &s.PaymentMethod, &s.SoldAt)
	return s, err
}
