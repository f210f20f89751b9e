package port

import (
	"context"

	"github.com/rl1809/aspas/internal/core/domain"
)

type LedgerStore interface {
	// InTx runs fn in a single transaction, rolled back if fn returns an error
	InTx(ctx context.Context, fn func(tx LedgerTx) error) error

	// GetPart retrieves a part by ID, ErrNotFound if absent
	GetPart(ctx context.Context, id string) (*domain.Part, error)

	// ListParts returns parts ordered by name
	ListParts(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error)

	// ListVendors returns all vendors ordered by name
	ListVendors(ctx context.Context) ([]domain.Vendor, error)

	// ListSales returns sales matching the filter, newest first
	ListSales(ctx context.Context, filter domain.SalesFilter) ([]domain.Sale, error)

	// ListSaleLines returns sales joined with the current part price, newest first
	ListSaleLines(ctx context.Context, filter domain.SalesFilter) ([]domain.SaleLine, error)

	// QueryAudit returns audit entries matching every set predicate, newest first
	QueryAudit(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error)

	// FindUser retrieves a credential record, ErrNotFound if absent
	FindUser(ctx context.Context, username string) (*domain.User, error)

	// CountUsers returns the number of stored credential records
	CountUsers(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
	Close() error
}

type LedgerTx interface {
	GetPart(ctx context.Context, id string) (*domain.Part, error)
	ListParts(ctx context.Context, filter domain.PartFilter) ([]domain.Part, error)
	InsertPart(ctx context.Context, part domain.Part) error

	// DeletePart removes a part, ErrNotFound if absent
	DeletePart(ctx context.Context, id string) error

	// DecrementStock lowers stock only if enough is left and returns what remains,
	// ErrInsufficientStock otherwise
	DecrementStock(ctx context.Context, id string, quantity int) (int, error)

	// UpdateStock sets stock with version check, ErrOptimisticLock on conflict
	UpdateStock(ctx context.Context, id string, stock, version int) error

	InsertSale(ctx context.Context, sale domain.Sale) error
	InsertVendor(ctx context.Context, vendor domain.Vendor) error
	InsertUser(ctx context.Context, user domain.User) error

	// AppendAudit writes one audit entry, visible only once the transaction commits
	AppendAudit(ctx context.Context, entry domain.AuditEntry) error
}
