package movement_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CrwnG/DndProyect-sub001/internal/clients/arena"
	mockarena "github.com/CrwnG/DndProyect-sub001/internal/clients/arena/mock"
	"github.com/CrwnG/DndProyect-sub001/internal/clock"
	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	dnderr "github.com/CrwnG/DndProyect-sub001/internal/errors"
	"github.com/CrwnG/DndProyect-sub001/internal/events"
	"github.com/CrwnG/DndProyect-sub001/internal/services/movement"
	"github.com/CrwnG/DndProyect-sub001/internal/services/presenter"
	"github.com/CrwnG/DndProyect-sub001/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// fakePresenter records sequences without animating anything
type fakePresenter struct {
	calls []*combat.RollData
}

func (f *fakePresenter) PlayAttackSequence(ctx context.Context, roll *combat.RollData, opts *presenter.PlayOptions) error {
	f.calls = append(f.calls, roll)
	return nil
}

func (f *fakePresenter) Click() {}

func (f *fakePresenter) Phase() presenter.Phase { return presenter.PhaseIdle }

type fixture struct {
	ctrl      *gomock.Controller
	gateway   *mockarena.MockClient
	bus       *events.Bus
	store     *state.Store
	clk       *clock.ManualClock
	presenter *fakePresenter
	svc       movement.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	bus := events.NewBus()
	clk := clock.NewManualClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	store := state.NewStore(&state.StoreConfig{
		Bus:           bus,
		UUIDGenerator: &testIDGen{},
		Clock:         clk,
	})
	gateway := mockarena.NewMockClient(ctrl)
	fp := &fakePresenter{}

	svc := movement.NewService(&movement.ServiceConfig{
		Gateway:          gateway,
		State:            store,
		Bus:              bus,
		Presenter:        fp,
		Clock:            clk,
		MoveCellDuration: 150 * time.Millisecond,
		ReactionPause:    400 * time.Millisecond,
		GatewayTimeout:   5 * time.Second,
	})

	return &fixture{
		ctrl:      ctrl,
		gateway:   gateway,
		bus:       bus,
		store:     store,
		clk:       clk,
		presenter: fp,
		svc:       svc,
	}
}

type testIDGen struct{ n int }

func (g *testIDGen) New() string {
	g.n++
	return string(rune('a' + g.n - 1))
}

// loadCombat seeds the standard scenario: the local hero at (2,2) with
// (2,3) reachable, a goblin adjacent, movement mode armed.
func (f *fixture) loadCombat() {
	f.store.Reset("combat-1", "hero-1", []*combat.Combatant{
		{ID: "hero-1", Name: "Aria", Type: combat.CombatantTypePlayer, Position: combat.Position{X: 2, Y: 2}, CurrentHP: 20, MaxHP: 20, MovementLeft: 30, IsActive: true},
		{ID: "goblin-1", Name: "Goblin", Type: combat.CombatantTypeMonster, Position: combat.Position{X: 3, Y: 2}, CurrentHP: 7, MaxHP: 7, IsActive: true},
		{ID: "goblin-2", Name: "Goblin Archer", Type: combat.CombatantTypeMonster, Position: combat.Position{X: 1, Y: 2}, CurrentHP: 7, MaxHP: 7, IsActive: true},
	})
	f.store.SetActiveTurn("hero-1", 1)
	f.store.ArmMovement(true)
	f.store.SetReachableCells([]combat.Position{{X: 2, Y: 3}, {X: 3, Y: 3}})
}

func TestRequestMove_HappyPathWithOpportunityAttack(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	var sequence []string
	var positionAtStarted combat.Position

	f.bus.Subscribe(events.EventMovementStarted, func(payload any) {
		p := payload.(events.MovementStartedPayload)
		sequence = append(sequence, "started")
		occupant, _ := f.store.Combatant(p.CombatantID)
		positionAtStarted = occupant.Position
		assert.Equal(t, combat.Position{X: 2, Y: 2}, p.From)
		assert.Equal(t, combat.Position{X: 2, Y: 3}, p.To)
	})
	f.bus.Subscribe(events.EventReactionResolved, func(payload any) {
		sequence = append(sequence, "reaction")
	})
	f.bus.Subscribe(events.EventMovementCompleted, func(payload any) {
		sequence = append(sequence, "completed")
	})

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "combat-1", "hero-1", 2, 3).
		Return(&arena.MoveResult{Success: true, Distance: 5, OpportunityAttacks: []string{"goblin-1"}}, nil)
	f.gateway.EXPECT().
		UseReaction(gomock.Any(), "combat-1", "goblin-1", combat.ReactionKindOpportunityAttack, "hero-1").
		Return(&arena.ReactionResult{Success: true, DamageDealt: 4, Description: "Goblin slashes Aria"}, nil)
	f.gateway.EXPECT().
		GetReachableCells(gomock.Any(), "combat-1", "hero-1").
		Return([]combat.Position{{X: 2, Y: 4}}, nil)

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.NoError(t, err)

	// Started fires while the "from" position is still true.
	assert.Equal(t, combat.Position{X: 2, Y: 2}, positionAtStarted)
	assert.Equal(t, []string{"started", "reaction", "completed"}, sequence)

	hero, _ := f.store.Combatant("hero-1")
	assert.Equal(t, combat.Position{X: 2, Y: 3}, hero.Position)
	assert.Equal(t, 25, hero.MovementLeft, "budget decremented by server distance")

	assert.True(t, f.store.IsReachable(combat.Position{X: 2, Y: 4}), "reachable set refreshed")
	assert.Empty(t, f.store.PathPreview(), "preview cleared")
	assert.Equal(t, movement.PhaseIdle, f.svc.Phase())

	require.Len(t, f.presenter.calls, 1)
	assert.True(t, f.presenter.calls[0].Hit)
}

func TestRequestMove_TransportErrorAbortsCleanly(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	var errorEvents int
	f.bus.Subscribe(events.EventErrorOccurred, func(any) { errorEvents++ })
	f.bus.Subscribe(events.EventMovementStarted, func(any) {
		t.Error("movement:started must not fire on a failed move")
	})

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "combat-1", "hero-1", 2, 3).
		Return(nil, dnderr.Unavailable("connection refused"))

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.Error(t, err)

	hero, _ := f.store.Combatant("hero-1")
	assert.Equal(t, combat.Position{X: 2, Y: 2}, hero.Position, "no optimistic mutation")
	assert.Equal(t, 1, errorEvents)
	assert.Equal(t, movement.PhaseIdle, f.svc.Phase(), "flag released")

	entries := f.store.Log()
	require.NotEmpty(t, entries)
	assert.Equal(t, combat.LogKindError, entries[len(entries)-1].Kind)
}

func TestRequestMove_ServerRejectionUsesDescription(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "combat-1", "hero-1", 2, 3).
		Return(&arena.MoveResult{Success: false, Description: "difficult terrain blocks the path"}, nil)

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.Error(t, err)
	assert.True(t, dnderr.IsRejected(err))

	entries := f.store.Log()
	require.NotEmpty(t, entries)
	assert.Contains(t, entries[len(entries)-1].Message, "difficult terrain")
	assert.Equal(t, movement.PhaseIdle, f.svc.Phase())
}

func TestRequestMove_SecondCallWhileInFlightIsRejected(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "combat-1", "hero-1", 2, 3).
		DoAndReturn(func(context.Context, string, string, int, int) (*arena.MoveResult, error) {
			// Re-entry while the first move is suspended on the server
			// round trip.
			err := f.svc.RequestMove(context.Background(), combat.Position{X: 3, Y: 3})
			assert.True(t, dnderr.IsFailedPrecondition(err))
			return &arena.MoveResult{Success: true, Distance: 5}, nil
		})
	f.gateway.EXPECT().
		GetReachableCells(gomock.Any(), "combat-1", "hero-1").
		Return(nil, nil)

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, movement.PhaseIdle, f.svc.Phase())
}

func TestRequestMove_ReactionsResolveInOrderDespiteFailure(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "combat-1", "hero-1", 2, 3).
		Return(&arena.MoveResult{Success: true, Distance: 5, OpportunityAttacks: []string{"goblin-1", "goblin-2"}}, nil)

	gomock.InOrder(
		f.gateway.EXPECT().
			UseReaction(gomock.Any(), "combat-1", "goblin-1", combat.ReactionKindOpportunityAttack, "hero-1").
			Return(nil, errors.New("boom")),
		// The second reaction must still be attempted.
		f.gateway.EXPECT().
			UseReaction(gomock.Any(), "combat-1", "goblin-2", combat.ReactionKindOpportunityAttack, "hero-1").
			Return(&arena.ReactionResult{Success: true, DamageDealt: 0, Description: "Goblin Archer misses"}, nil),
	)
	f.gateway.EXPECT().
		GetReachableCells(gomock.Any(), "combat-1", "hero-1").
		Return(nil, nil)

	var resolved []events.ReactionResolvedPayload
	f.bus.Subscribe(events.EventReactionResolved, func(payload any) {
		resolved = append(resolved, payload.(events.ReactionResolvedPayload))
	})

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.NoError(t, err)

	require.Len(t, resolved, 1)
	assert.Equal(t, "goblin-2", resolved[0].AttackerID)
	assert.False(t, resolved[0].Hit, "zero damage counts as a miss")

	var errorEntries int
	for _, entry := range f.store.Log() {
		if entry.Kind == combat.LogKindError {
			errorEntries++
		}
	}
	assert.Equal(t, 1, errorEntries, "failed reaction logged individually")
}

func TestRequestMove_EmptyAttackerIDsAreSkipped(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "combat-1", "hero-1", 2, 3).
		Return(&arena.MoveResult{Success: true, Distance: 5, OpportunityAttacks: []string{"", "goblin-1"}}, nil)
	f.gateway.EXPECT().
		UseReaction(gomock.Any(), "combat-1", "goblin-1", combat.ReactionKindOpportunityAttack, "hero-1").
		Return(&arena.ReactionResult{Success: true, DamageDealt: 2}, nil)
	f.gateway.EXPECT().
		GetReachableCells(gomock.Any(), "combat-1", "hero-1").
		Return(nil, nil)

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.NoError(t, err)
}

func TestRequestMove_MissingCombatIDAbortsReactions(t *testing.T) {
	f := newFixture(t)
	f.store.Reset("", "hero-1", []*combat.Combatant{
		{ID: "hero-1", Name: "Aria", Position: combat.Position{X: 2, Y: 2}, MovementLeft: 30, IsActive: true},
	})
	f.store.SetActiveTurn("hero-1", 1)
	f.store.ArmMovement(true)
	f.store.SetReachableCells([]combat.Position{{X: 2, Y: 3}})

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "", "hero-1", 2, 3).
		Return(&arena.MoveResult{Success: true, Distance: 5, OpportunityAttacks: []string{"goblin-1"}}, nil)
	// No UseReaction expectation: reaction processing aborts without a
	// combat id. The post-move refresh also fails its precondition.

	var errorEvents int
	f.bus.Subscribe(events.EventErrorOccurred, func(any) { errorEvents++ })

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, errorEvents)
}

func TestRequestMove_UnarmedClickSelectsOccupant(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()
	f.store.ArmMovement(false)

	var selected []events.CombatantSelectedPayload
	f.bus.Subscribe(events.EventCombatantSelected, func(payload any) {
		selected = append(selected, payload.(events.CombatantSelectedPayload))
	})

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 3, Y: 2})
	require.Error(t, err)
	assert.True(t, dnderr.IsFailedPrecondition(err))

	require.Len(t, selected, 1)
	assert.Equal(t, "goblin-1", selected[0].CombatantID)

	hero, _ := f.store.Combatant("hero-1")
	assert.Equal(t, combat.Position{X: 2, Y: 2}, hero.Position)
}

func TestRequestMove_UnarmedClickOnEmptyCellIsPureNoop(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()
	f.store.ArmMovement(false)

	f.bus.Subscribe(events.EventCombatantSelected, func(any) {
		t.Error("empty cell click must not select")
	})

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 9, Y: 9})
	require.Error(t, err)
}

func TestRequestMove_UnreachableCellIsRejectedLocally(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	// No gateway expectations: the reachable-set check happens before any
	// network call.
	err := f.svc.RequestMove(context.Background(), combat.Position{X: 8, Y: 8})
	require.Error(t, err)
	assert.True(t, dnderr.IsFailedPrecondition(err))
}

func TestRequestMove_NotYourTurn(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()
	f.store.SetActiveTurn("goblin-1", 1)

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.Error(t, err)
	assert.True(t, dnderr.IsFailedPrecondition(err))
}

func TestRequestMove_AnimationScalesWithPathLength(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()
	f.store.SetReachableCells([]combat.Position{{X: 2, Y: 5}})

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "combat-1", "hero-1", 2, 5).
		Return(&arena.MoveResult{Success: true, Distance: 15}, nil)
	f.gateway.EXPECT().
		GetReachableCells(gomock.Any(), "combat-1", "hero-1").
		Return(nil, nil)

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 5})
	require.NoError(t, err)

	// Three cells from (2,2) to (2,5) at 150ms per cell.
	sleeps := f.clk.Sleeps()
	require.NotEmpty(t, sleeps)
	assert.Equal(t, 450*time.Millisecond, sleeps[0])
}

func TestPreviewPath_IgnoredWhileMoving(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	f.gateway.EXPECT().
		MoveCombatant(gomock.Any(), "combat-1", "hero-1", 2, 3).
		DoAndReturn(func(context.Context, string, string, int, int) (*arena.MoveResult, error) {
			before := f.store.PathPreview()
			f.svc.PreviewPath(combat.Position{X: 9, Y: 9})
			assert.Equal(t, before, f.store.PathPreview(), "hover must not touch the in-flight preview")
			return &arena.MoveResult{Success: true, Distance: 5}, nil
		})
	f.gateway.EXPECT().
		GetReachableCells(gomock.Any(), "combat-1", "hero-1").
		Return(nil, nil)

	err := f.svc.RequestMove(context.Background(), combat.Position{X: 2, Y: 3})
	require.NoError(t, err)
}

func TestPreviewPath_UpdatesWhileIdle(t *testing.T) {
	f := newFixture(t)
	f.loadCombat()

	f.svc.PreviewPath(combat.Position{X: 4, Y: 2})
	assert.Equal(t, []combat.Position{{X: 3, Y: 2}, {X: 4, Y: 2}}, f.store.PathPreview())
}
