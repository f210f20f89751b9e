package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/aspas/internal/adapter/storage"
	"github.com/rl1809/aspas/internal/core/domain"
	"github.com/rl1809/aspas/internal/core/service"
)

const (
	initialStock  = 20
	totalRequests = 50
)

func main() {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "aspas-stress-*")
	if err != nil {
		log.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	store, err := storage.OpenSQLite(ctx, filepath.Join(dir, "stress.db"))
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %v", err)
	}

	settings := service.Settings{}
	audit := service.NewAuditService(store, settings)
	reorder := service.NewReorderMonitor(store, audit, settings, nil)
	inventory := service.NewInventoryService(store, audit, settings)
	sales := service.NewSalesService(store, audit, reorder, storage.NewMemoryGuard(time.Hour), nil, settings)
	auth := service.NewAuthService(store, audit, nil, bcrypt.MinCost)

	if _, err := auth.EnsureDefaultUsers(ctx); err != nil {
		log.Fatalf("failed to seed users: %v", err)
	}
	sess, err := auth.Login(ctx, "employee1", "emp123")
	if err != nil {
		log.Fatalf("failed to log in: %v", err)
	}

	partID, err := inventory.AddPart(ctx, sess, domain.NewPart{
		Name:  "Stress test part",
		Stock: initialStock,
		Price: decimal.NewFromInt(100),
	})
	if err != nil {
		log.Fatalf("failed to add part: %v", err)
	}

	// Counters
	var successCount atomic.Int32
	var soldOutCount atomic.Int32
	var otherCount atomic.Int32

	// Customer sales never reorder, so stock only goes down.
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			_, err := sales.RecordCustomerSale(ctx, sess, domain.SaleRequest{
				PartID:    partID,
				Quantity:  1,
				RequestID: fmt.Sprintf("stress-%d", n),
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				soldOutCount.Add(1)
			default:
				otherCount.Add(1)
				log.Printf("request %d: %v", n, err)
			}
		}(i)
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	soldOut := soldOutCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Sold out:         %d\n", soldOut)
	fmt.Printf("Other errors:     %d\n", otherCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	// Assertions
	if success == int32(initialStock) && soldOut == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: Exactly %d sales succeeded, %d sold out\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d sold out, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, soldOut)
	}

	part, err := store.GetPart(ctx, partID)
	if err != nil {
		log.Fatalf("failed to read part: %v", err)
	}
	fmt.Printf("Final Stock: %d\n", part.Stock)
	if part.Stock == 0 {
		fmt.Println("PASS: Stock depleted to 0")
	} else {
		fmt.Printf("FAIL: Expected stock 0, got %d\n", part.Stock)
	}

	recorded, err := store.QueryAudit(ctx, domain.AuditFilter{Action: domain.ActionCustomerSale})
	if err != nil {
		log.Fatalf("failed to read audit log: %v", err)
	}
	if len(recorded) == int(success) {
		fmt.Println("PASS: One audit entry per sale")
	} else {
		fmt.Printf("FAIL: %d audit entries for %d sales\n", len(recorded), success)
	}
}
