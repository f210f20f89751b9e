package storage

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/port"
)

func getMySQLAdapter(t *testing.T) *SQLAdapter {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/aspas?parseTime=true"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	adapter, err := OpenMySQL(ctx, dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}
	if err := adapter.Migrate(context.Background()); err != nil {
		adapter.Close()
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { adapter.Close() })

	return adapter
}

func TestMySQL_DecrementStockAndSale(t *testing.T) {
	adapter := getMySQLAdapter(t)
	ctx := context.Background()

	p := testPart("mysql-brake-pad", 10, 50)
	insertPart(t, adapter, p)

	err := adapter.InTx(ctx, func(tx port.LedgerTx) error {
		if _, err := tx.DecrementStock(ctx, p.ID, 3); err != nil {
			return err
		}
		return tx.InsertSale(ctx, domain.Sale{
			ID: ids.Sale(), PartID: p.ID, Quantity: 3, PaymentMethod: "Cash", SoldAt: time.Now(),
		})
	})
	require.NoError(t, err)

	got, err := adapter.GetPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	sales, err := adapter.ListSales(ctx, domain.SalesFilter{PartID: p.ID})
	require.NoError(t, err)
	assert.Len(t, sales, 1)

	err = adapter.InTx(ctx, func(tx port.LedgerTx) error {
		_, err := tx.DecrementStock(ctx, p.ID, 8)
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

func TestMySQL_DuplicatePart(t *testing.T) {
	adapter := getMySQLAdapter(t)

	p := testPart("mysql-dup", 1, 1)
	insertPart(t, adapter, p)

	err := adapter.InTx(context.Background(), func(tx port.LedgerTx) error {
		return tx.InsertPart(context.Background(), p)
	})
	assert.ErrorIs(t, err, domain.ErrConstraintViolation)
}

func TestMySQL_ConcurrentDecrement(t *testing.T) {
	adapter := getMySQLAdapter(t)
	ctx := context.Background()

	p := testPart("mysql-flash", 20, 1)
	insertPart(t, adapter, p)

	var wg sync.WaitGroup
	var successCount atomic.Int32
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := adapter.InTx(ctx, func(tx port.LedgerTx) error {
				_, err := tx.DecrementStock(ctx, p.ID, 1)
				return err
			})
			if err == nil {
				successCount.Add(1)
			} else if !errors.Is(err, domain.ErrInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(20), successCount.Load())

	got, err := adapter.GetPart(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Stock)
}
