package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rl1809/aspas/internal/adapter/storage"
	"github.com/rl1809/aspas/internal/core/service"
)

func newTestServices(t *testing.T) Services {
	t.Helper()
	ctx := context.Background()

	store, err := storage.OpenSQLiteMemory(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	settings := service.Settings{Location: time.UTC}
	audit := service.NewAuditService(store, settings)
	reorder := service.NewReorderMonitor(store, audit, settings, nil)
	auth := service.NewAuthService(store, audit, nil, bcrypt.MinCost)

	_, err = auth.EnsureDefaultUsers(ctx)
	require.NoError(t, err)

	return Services{
		Auth:      auth,
		Sessions:  service.NewSessionRegistry(),
		Inventory: service.NewInventoryService(store, audit, settings),
		Sales:     service.NewSalesService(store, audit, reorder, storage.NewMemoryGuard(time.Hour), nil, settings),
		Audit:     audit,
		Reports:   service.NewReportService(store, audit, settings),
		Store:     store,
	}
}
