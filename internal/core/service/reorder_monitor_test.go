package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/aspas/internal/core/domain"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.ReorderEvent
	err    error
}

func (n *recordingNotifier) NotifyReorder(_ context.Context, e domain.ReorderEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func TestNeedsReorder(t *testing.T) {
	m := NewReorderMonitor(nil, nil, Settings{}, nil)

	tests := []struct {
		name    string
		stock   int
		initial int
		want    bool
	}{
		{"above threshold", 31, 100, false},
		{"at threshold", 30, 100, true},
		{"below threshold", 25, 100, true},
		{"small initial at threshold", 3, 10, true},
		{"full stock", 100, 100, false},
		{"zero initial", 0, 0, false},
		{"sold out", 0, 20, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.NeedsReorder(domain.Part{Stock: tt.stock, InitialStock: tt.initial})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateAndReorder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	low := env.addPart(t, 100, 10)
	healthy := env.addPart(t, 100, 10)
	env.setStock(t, low, 25)
	env.setStock(t, healthy, 31)

	events, err := env.reorder.EvaluateAndReorder(ctx, admin)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, low, events[0].PartID)
	assert.Equal(t, 25, events[0].OldStock)
	assert.Equal(t, 100, events[0].NewStock)

	assert.Equal(t, 100, env.part(t, low).Stock)
	assert.Equal(t, 31, env.part(t, healthy).Stock)

	entries := env.auditEntries(t, domain.ActionAutoReorder)
	require.Len(t, entries, 1)
	assert.Equal(t, "Auto-reorder triggered for '"+events[0].PartName+"' (ID: "+low+"). Stock updated from 25 to 100",
		entries[0].Details)

	// Nothing changed since, so a second pass is a no-op.
	events, err = env.reorder.EvaluateAndReorder(ctx, admin)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Len(t, env.auditEntries(t, domain.ActionAutoReorder), 1)
	assert.Equal(t, 100, env.part(t, low).Stock)
}

func TestEvaluateAndReorder_NotifiesAfterCommit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	notifier := &recordingNotifier{err: errors.New("channel closed")}
	monitor := NewReorderMonitor(env.store, env.audit, Settings{}, nil, notifier)

	id := env.addPart(t, 10, 10)
	env.setStock(t, id, 3)

	events, err := monitor.EvaluateAndReorder(ctx, admin)
	require.NoError(t, err, "notifier failures are not reorder failures")
	require.Len(t, events, 1)
	require.Len(t, notifier.events, 1)
	assert.Equal(t, events[0], notifier.events[0])
	assert.Equal(t, 10, env.part(t, id).Stock)
}

func TestEvaluateAndReorder_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.reorder.EvaluateAndReorder(context.Background(), domain.Session{Username: "x", Role: "guest"})
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}
