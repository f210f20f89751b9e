package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/aspas/internal/core/domain"
)

func TestAuditRecord_UnknownAction(t *testing.T) {
	env := newTestEnv(t)

	err := env.audit.Record(context.Background(), admin, domain.ActionType("REBOOT"), "x")
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	err = env.audit.Record(context.Background(), domain.Session{}, domain.ActionLogin, "x")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuditRecord_RejectsMutatingActions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, action := range []domain.ActionType{
		domain.ActionAddInventory,
		domain.ActionDeleteInventory,
		domain.ActionAutoReorder,
		domain.ActionAddVendor,
		domain.ActionRecordSale,
		domain.ActionCustomerSale,
	} {
		err := env.audit.Record(ctx, employee, action, "Sale recorded (ID: S-FAKE)")
		require.ErrorIs(t, err, domain.ErrInvalidInput, action)
		assert.Empty(t, env.auditEntries(t, action), action)
	}

	sales, err := env.store.ListSales(ctx, domain.SalesFilter{})
	require.NoError(t, err)
	assert.Empty(t, sales)

	require.NoError(t, env.audit.Record(ctx, employee, domain.ActionExportPDF, "printed"))
}

func TestAuditQuery_ByUsername(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.audit.Record(ctx, admin, domain.ActionLogin, "first"))
	env.clock.Set(env.clock.Now().Add(time.Minute))
	require.NoError(t, env.audit.Record(ctx, employee, domain.ActionLogin, "other"))
	env.clock.Set(env.clock.Now().Add(time.Minute))
	require.NoError(t, env.audit.Record(ctx, admin, domain.ActionLogout, "second"))
	// Same timestamp as "second": insertion order breaks the tie.
	require.NoError(t, env.audit.Record(ctx, admin, domain.ActionLogin, "third"))

	entries, err := env.audit.Query(ctx, admin, domain.AuditQuery{Username: "admin"})
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"third", "second", "first"},
		[]string{entries[0].Details, entries[1].Details, entries[2].Details})
	for _, e := range entries {
		assert.Equal(t, "admin", e.Username)
	}

	entries, err = env.audit.Query(ctx, admin, domain.AuditQuery{Username: "admin", Action: "LOGIN"})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = env.audit.Query(ctx, admin, domain.AuditQuery{DatePrefix: "2024-05-06", Limit: 1})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "third", entries[0].Details)

	entries, err = env.audit.Query(ctx, admin, domain.AuditQuery{DatePrefix: "2023"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestAuditQuery_AdminOnly(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.audit.Query(context.Background(), employee, domain.AuditQuery{})
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = env.audit.ExportRows(context.Background(), employee, domain.AuditQuery{}, "audit.csv")
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Empty(t, env.auditEntries(t, domain.ActionExportAuditLog))
}

func TestAuditViewLog(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.audit.Record(ctx, employee, domain.ActionLogin, "User login: employee1 (employee)"))

	entries, err := env.audit.ViewLog(ctx, admin, domain.AuditQuery{})
	require.NoError(t, err)
	assert.Len(t, entries, 1, "the view entry is written after the read")

	views := env.auditEntries(t, domain.ActionViewAuditLog)
	require.Len(t, views, 1)
	assert.Equal(t, "Viewed system audit logs", views[0].Details)
}

func TestAuditExportRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.addPart(t, 4, 10)

	rows, err := env.audit.ExportRows(ctx, admin, domain.AuditQuery{Action: "ADD_INVENTORY"}, "audit_logs.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Log ID", "Action Type", "Details", "Timestamp", "Username", "User Role"}, rows[0])
	assert.Equal(t, "ADD_INVENTORY", rows[1][1])
	assert.Equal(t, "2024-05-06 09:00:00", rows[1][3])
	assert.Equal(t, "admin", rows[1][4])
	assert.Equal(t, "admin", rows[1][5])

	exports := env.auditEntries(t, domain.ActionExportAuditLog)
	require.Len(t, exports, 1)
	assert.Equal(t, "Exported audit logs to CSV: audit_logs.csv", exports[0].Details)
}
