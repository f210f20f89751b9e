package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/aspas/internal/adapter/storage"
	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/port"
)

var (
	admin    = domain.Session{Username: "admin", Role: domain.RoleAdmin}
	employee = domain.Session{Username: "employee1", Role: domain.RoleEmployee}
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type testEnv struct {
	store     *storage.SQLAdapter
	clock     *fakeClock
	audit     *AuditService
	inventory *InventoryService
	reorder   *ReorderMonitor
	sales     *SalesService
	auth      *AuthService
	reports   *ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store, err := storage.OpenSQLiteMemory(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return newTestEnvWithStore(t, store, store)
}

// newTestEnvWithStore builds the services on svcStore while keeping direct
// access to the underlying adapter for assertions.
func newTestEnvWithStore(t *testing.T, adapter *storage.SQLAdapter, svcStore port.LedgerStore) *testEnv {
	t.Helper()

	clock := &fakeClock{t: time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC)}
	settings := Settings{
		IDs:      domain.NewIDGenerator("TEST"),
		Location: time.UTC,
		Now:      clock.Now,
	}

	audit := NewAuditService(svcStore, settings)
	reorder := NewReorderMonitor(svcStore, audit, settings, nil)
	return &testEnv{
		store:     adapter,
		clock:     clock,
		audit:     audit,
		inventory: NewInventoryService(svcStore, audit, settings),
		reorder:   reorder,
		sales:     NewSalesService(svcStore, audit, reorder, storage.NewMemoryGuard(time.Hour), nil, settings),
		auth:      NewAuthService(svcStore, audit, nil, bcrypt.MinCost),
		reports:   NewReportService(svcStore, audit, settings),
	}
}

func (e *testEnv) addPart(t *testing.T, stock int, price int64) string {
	t.Helper()

	id, err := e.inventory.AddPart(context.Background(), admin, domain.NewPart{
		Name:         gofakeit.ProductName(),
		Manufacturer: gofakeit.CarMaker(),
		VehicleType:  gofakeit.CarType(),
		Stock:        stock,
		Price:        decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return id
}

func (e *testEnv) part(t *testing.T, id string) *domain.Part {
	t.Helper()

	p, err := e.store.GetPart(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) auditEntries(t *testing.T, action domain.ActionType) []domain.AuditEntry {
	t.Helper()

	entries, err := e.store.QueryAudit(context.Background(), domain.AuditFilter{Action: action})
	require.NoError(t, err)
	return entries
}

// setStock forces stock below its initial value without recording a sale.
func (e *testEnv) setStock(t *testing.T, id string, stock int) {
	t.Helper()

	err := e.store.InTx(context.Background(), func(tx port.LedgerTx) error {
		p, err := tx.GetPart(context.Background(), id)
		if err != nil {
			return err
		}
		return tx.UpdateStock(context.Background(), id, stock, p.Version)
	})
	require.NoError(t, err)
}

// failingAuditStore behaves like the wrapped store except that every audit
// append inside a transaction fails.
type failingAuditStore struct {
	port.LedgerStore
}

func (s failingAuditStore) InTx(ctx context.Context, fn func(tx port.LedgerTx) error) error {
	return s.LedgerStore.InTx(ctx, func(tx port.LedgerTx) error {
		return fn(failingAuditTx{LedgerTx: tx})
	})
}

type failingAuditTx struct {
	port.LedgerTx
}

func (failingAuditTx) AppendAudit(context.Context, domain.AuditEntry) error {
	return fmt.Errorf("append audit: %w", domain.ErrStorage)
}
