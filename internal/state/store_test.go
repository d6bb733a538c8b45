package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/CrwnG/DndProyect-sub001/internal/clock"
	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	"github.com/CrwnG/DndProyect-sub001/internal/events"
	"github.com/CrwnG/DndProyect-sub001/internal/repositories/combatlog"
	"github.com/CrwnG/DndProyect-sub001/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*state.Store, *events.Bus) {
	t.Helper()

	bus := events.NewBus()
	store := state.NewStore(&state.StoreConfig{
		Bus:   bus,
		Clock: clock.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
	})
	store.Reset("combat-1", "hero-1", []*combat.Combatant{
		{ID: "hero-1", Name: "Aria", Position: combat.Position{X: 2, Y: 2}, MovementLeft: 30, IsActive: true},
		{ID: "goblin-1", Name: "Goblin", Position: combat.Position{X: 3, Y: 2}, CurrentHP: 7, IsActive: true},
	})
	return store, bus
}

func TestStore_TurnState(t *testing.T) {
	store, _ := newTestStore(t)

	assert.False(t, store.IsLocalTurn())

	store.SetActiveTurn("hero-1", 2)
	assert.True(t, store.IsLocalTurn())
	assert.Equal(t, 2, store.Round())

	store.SetActiveTurn("goblin-1", 2)
	assert.False(t, store.IsLocalTurn())
}

func TestStore_FindCombatantFallsBackToScan(t *testing.T) {
	store, _ := newTestStore(t)

	direct, ok := store.FindCombatant("goblin-1")
	require.True(t, ok)
	assert.Equal(t, "Goblin", direct.Name)

	_, ok = store.FindCombatant("nobody")
	assert.False(t, ok)
}

func TestStore_CombatantAt(t *testing.T) {
	store, _ := newTestStore(t)

	occupant, ok := store.CombatantAt(combat.Position{X: 3, Y: 2})
	require.True(t, ok)
	assert.Equal(t, "goblin-1", occupant.ID)

	_, ok = store.CombatantAt(combat.Position{X: 9, Y: 9})
	assert.False(t, ok)
}

func TestStore_SpendMovementClampsAtZero(t *testing.T) {
	store, _ := newTestStore(t)

	store.SpendMovement("hero-1", 25)
	hero, _ := store.Combatant("hero-1")
	assert.Equal(t, 5, hero.MovementLeft)

	store.SpendMovement("hero-1", 10)
	hero, _ = store.Combatant("hero-1")
	assert.Equal(t, 0, hero.MovementLeft)
}

func TestStore_ReachableCellsReplaceWholesale(t *testing.T) {
	store, _ := newTestStore(t)

	store.SetReachableCells([]combat.Position{{X: 2, Y: 3}})
	assert.True(t, store.IsReachable(combat.Position{X: 2, Y: 3}))

	store.SetReachableCells([]combat.Position{{X: 4, Y: 4}})
	assert.False(t, store.IsReachable(combat.Position{X: 2, Y: 3}), "stale set must not linger")
	assert.True(t, store.IsReachable(combat.Position{X: 4, Y: 4}))
}

func TestStore_MutationsPublishStateChanged(t *testing.T) {
	store, bus := newTestStore(t)

	var changes int
	bus.Subscribe(events.EventStateChanged, func(any) { changes++ })

	store.SetPosition("hero-1", combat.Position{X: 2, Y: 3})
	store.SpendMovement("hero-1", 5)
	store.SetReachableCells(nil)

	assert.Equal(t, 3, changes)
}

func TestStore_AppendLogPublishesAndPersists(t *testing.T) {
	bus := events.NewBus()
	repo := combatlog.NewInMemoryRepository()
	store := state.NewStore(&state.StoreConfig{
		Bus:           bus,
		Clock:         clock.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)),
		LogRepository: repo,
	})
	store.Reset("combat-1", "hero-1", nil)

	var published []combat.LogEntry
	bus.Subscribe(events.EventLogAppended, func(payload any) {
		published = append(published, payload.(combat.LogEntry))
	})

	entry := store.AppendLog(combat.LogKindMovement, "hero-1", "Aria moves to (2,3)")
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "combat-1", entry.CombatID)

	require.Len(t, published, 1)
	assert.Equal(t, entry, published[0])

	persisted, err := repo.List(context.Background(), "combat-1")
	require.NoError(t, err)
	require.Len(t, persisted, 1)
	assert.Equal(t, entry.Message, persisted[0].Message)
}

func TestStore_MergeUpdatesKnownAndAddsUnknown(t *testing.T) {
	store, _ := newTestStore(t)

	store.Merge(&combat.StateSnapshot{
		Round:             3,
		ActiveCombatantID: "goblin-1",
		Combatants: []combat.Combatant{
			{ID: "goblin-1", Position: combat.Position{X: 4, Y: 4}, CurrentHP: 2, IsActive: true},
			{ID: "wolf-1", Name: "Wolf", Position: combat.Position{X: 0, Y: 0}, CurrentHP: 11, IsActive: true},
		},
	})

	goblin, _ := store.Combatant("goblin-1")
	assert.Equal(t, 2, goblin.CurrentHP)
	assert.Equal(t, combat.Position{X: 4, Y: 4}, goblin.Position)

	wolf, ok := store.Combatant("wolf-1")
	require.True(t, ok)
	assert.Equal(t, "Wolf", wolf.Name)

	assert.Equal(t, 3, store.Round())

	// Nil snapshots are ignored.
	store.Merge(nil)
}

func TestStore_PathPreviewCopies(t *testing.T) {
	store, _ := newTestStore(t)

	path := []combat.Position{{X: 2, Y: 3}}
	store.SetPathPreview(path)

	got := store.PathPreview()
	require.Len(t, got, 1)
	got[0] = combat.Position{X: 9, Y: 9}

	assert.Equal(t, combat.Position{X: 2, Y: 3}, store.PathPreview()[0], "callers must not alias internal state")
}
