package movement

//go:generate mockgen -destination=mock/mock_service.go -package=mockmovement -source=service.go

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/CrwnG/DndProyect-sub001/internal/clients/arena"
	"github.com/CrwnG/DndProyect-sub001/internal/clock"
	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	dnderr "github.com/CrwnG/DndProyect-sub001/internal/errors"
	"github.com/CrwnG/DndProyect-sub001/internal/events"
	"github.com/CrwnG/DndProyect-sub001/internal/services/presenter"
	"github.com/CrwnG/DndProyect-sub001/internal/state"
)

// Phase is the orchestrator's pipeline state. Only Idle accepts a new
// move; every other phase means a sequence is in flight and acts as the
// mutual-exclusion guard against overlapping moves.
type Phase string

const (
	PhaseIdle               Phase = "idle"
	PhaseValidating         Phase = "validating"
	PhaseAwaitingServerMove Phase = "awaiting_server_move"
	PhaseAnimatingMove      Phase = "animating_move"
	PhaseResolvingReactions Phase = "resolving_reactions"
)

// legalTransitions is the pipeline's transition table. Anything not
// listed is a bug, caught at runtime instead of silently corrupting the
// in-flight sequence.
var legalTransitions = map[Phase][]Phase{
	PhaseIdle:               {PhaseValidating},
	PhaseValidating:         {PhaseAwaitingServerMove, PhaseIdle},
	PhaseAwaitingServerMove: {PhaseAnimatingMove, PhaseIdle},
	PhaseAnimatingMove:      {PhaseResolvingReactions, PhaseIdle},
	PhaseResolvingReactions: {PhaseIdle},
}

// Service is the turn-action resolution pipeline: it validates movement
// intent, round-trips it through the arena server, paces the move
// animation, then resolves triggered reactions one at a time.
type Service interface {
	// RequestMove runs the full pipeline for one movement intent. Calls
	// made while a sequence is in flight, or that fail a local
	// precondition, are no-ops apart from the selection reinterpretation
	// of clicks on occupied cells.
	RequestMove(ctx context.Context, target combat.Position) error

	// PreviewPath recomputes the cosmetic hover path. Ignored while a
	// move is in flight so it cannot corrupt the active preview.
	PreviewPath(target combat.Position)

	// RefreshReachable re-fetches the reachable-cell set for the local
	// combatant; called at turn start and after each completed move
	RefreshReachable(ctx context.Context) error

	// Phase returns the current pipeline phase
	Phase() Phase
}

// ServiceConfig holds the dependencies for the movement service
type ServiceConfig struct {
	Gateway   arena.Client
	State     *state.Store
	Bus       *events.Bus
	Presenter presenter.Service
	Clock     clock.Clock

	// MoveCellDuration paces the move animation: total suspension is
	// path length times this
	MoveCellDuration time.Duration

	// ReactionPause is the fixed delay after each resolved reaction so
	// its attack animation can play out
	ReactionPause time.Duration

	// GatewayTimeout bounds every server round trip so a hung gateway
	// cannot hold the pipeline lock forever
	GatewayTimeout time.Duration

	// ClickToRoll gates reaction dice animations on a player click
	ClickToRoll bool
}

type service struct {
	gateway   arena.Client
	state     *state.Store
	bus       *events.Bus
	presenter presenter.Service
	clock     clock.Clock

	moveCellDuration time.Duration
	reactionPause    time.Duration
	gatewayTimeout   time.Duration
	clickToRoll      bool

	mu    sync.Mutex
	phase Phase
}

// NewService creates a movement service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("movement config is required")
	}
	if cfg.Gateway == nil {
		panic("gateway is required")
	}
	if cfg.State == nil {
		panic("state store is required")
	}
	if cfg.Bus == nil {
		panic("event bus is required")
	}

	svc := &service{
		gateway:          cfg.Gateway,
		state:            cfg.State,
		bus:              cfg.Bus,
		presenter:        cfg.Presenter,
		clock:            cfg.Clock,
		moveCellDuration: cfg.MoveCellDuration,
		reactionPause:    cfg.ReactionPause,
		gatewayTimeout:   cfg.GatewayTimeout,
		clickToRoll:      cfg.ClickToRoll,
		phase:            PhaseIdle,
	}
	if svc.clock == nil {
		svc.clock = clock.NewRealClock()
	}
	if svc.moveCellDuration <= 0 {
		svc.moveCellDuration = 200 * time.Millisecond
	}
	if svc.reactionPause <= 0 {
		svc.reactionPause = 600 * time.Millisecond
	}
	if svc.gatewayTimeout <= 0 {
		svc.gatewayTimeout = 15 * time.Second
	}

	return svc
}

// Phase returns the current pipeline phase
func (s *service) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// transition moves the pipeline to next, failing on anything the table
// does not allow
func (s *service) transition(next Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range legalTransitions[s.phase] {
		if allowed == next {
			s.phase = next
			return nil
		}
	}
	return dnderr.Internalf("illegal pipeline transition %s -> %s", s.phase, next)
}

// tryBegin atomically claims the pipeline for a new move. This is the
// mutual-exclusion flag: it fails while any sequence is in flight.
func (s *service) tryBegin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseIdle {
		return false
	}
	s.phase = PhaseValidating
	return true
}

// finish releases the pipeline and clears the cosmetic path no matter
// which exit path got us here
func (s *service) finish() {
	s.mu.Lock()
	s.phase = PhaseIdle
	s.mu.Unlock()

	s.state.ClearPathPreview()
}

// RequestMove implements Service.RequestMove
func (s *service) RequestMove(ctx context.Context, target combat.Position) error {
	if !s.tryBegin() {
		// A sequence is already in flight; this click is dropped.
		return dnderr.FailedPrecondition("a move is already in progress")
	}
	defer s.finish()

	moverID := s.state.LocalCombatantID()

	if err := s.checkPreconditions(target); err != nil {
		// A click that fails preconditions still selects whatever
		// occupies the cell.
		if occupant, ok := s.state.CombatantAt(target); ok {
			s.bus.Publish(events.EventCombatantSelected, events.CombatantSelectedPayload{
				CombatantID: occupant.ID,
				Position:    occupant.Position,
			})
		}
		return err
	}

	mover, ok := s.state.Combatant(moverID)
	if !ok {
		return dnderr.NotFoundf("combatant %q not in combat state", moverID)
	}
	from := mover.Position
	path := combat.ComputePath(from, target)
	s.state.SetPathPreview(path)

	if err := s.transition(PhaseAwaitingServerMove); err != nil {
		return err
	}

	result, err := s.callMove(ctx, moverID, target)
	if err != nil {
		s.failMove(moverID, fmt.Sprintf("%s could not move: %v", mover.Name, err))
		return err
	}
	if !result.Success {
		desc := result.Description
		if desc == "" {
			desc = "the server rejected the move"
		}
		s.failMove(moverID, fmt.Sprintf("%s could not move: %s", mover.Name, desc))
		return dnderr.Rejected(desc)
	}

	if err := s.transition(PhaseAnimatingMove); err != nil {
		return err
	}

	// The started event carries the pre-move snapshot and must go out
	// before shared state mutates, so animation consumers still see the
	// "from" cell as current.
	s.bus.Publish(events.EventMovementStarted, events.MovementStartedPayload{
		CombatantID: moverID,
		From:        from,
		To:          target,
		Path:        path,
	})

	// Let the animation visually catch up to the committed move. The
	// server has already accepted it, so an interrupted wait must not
	// skip the state write below.
	animation := time.Duration(len(path)) * s.moveCellDuration
	if err := s.clock.Sleep(ctx, animation); err != nil {
		log.Printf("Movement: animation wait interrupted: %v", err)
	}

	s.state.SetPosition(moverID, target)
	s.state.SpendMovement(moverID, result.Distance)
	s.state.AppendLog(combat.LogKindMovement, moverID,
		fmt.Sprintf("%s moves to %s (%d ft)", mover.Name, target, result.Distance))

	if err := s.transition(PhaseResolvingReactions); err != nil {
		return err
	}

	s.resolveReactions(ctx, mover, result.OpportunityAttacks)

	if err := s.RefreshReachable(ctx); err != nil {
		// The set is stale until the next refresh; the move itself stands.
		log.Printf("Movement: failed to refresh reachable cells: %v", err)
	}

	s.bus.Publish(events.EventMovementCompleted, events.MovementCompletedPayload{
		CombatantID: moverID,
		From:        from,
		To:          target,
	})

	return nil
}

// checkPreconditions runs every local guard before any network call
func (s *service) checkPreconditions(target combat.Position) error {
	if !s.state.IsLocalTurn() {
		return dnderr.FailedPrecondition("it is not your turn")
	}
	if s.state.Targeting() {
		return dnderr.FailedPrecondition("cannot move while picking a target")
	}
	if !s.state.MovementArmed() {
		// Movement must be deliberately armed; without it a grid click is
		// a selection, never a move.
		return dnderr.FailedPrecondition("movement mode is not armed")
	}
	if !s.state.IsReachable(target) {
		return dnderr.FailedPreconditionf("cell %s is not reachable this turn", target)
	}
	return nil
}

func (s *service) callMove(ctx context.Context, moverID string, target combat.Position) (*arena.MoveResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	return s.gateway.MoveCombatant(callCtx, s.state.CombatID(), moverID, target.X, target.Y)
}

// failMove records a rejected or failed move; the deferred finish
// releases the pipeline
func (s *service) failMove(moverID, message string) {
	s.state.AppendLog(combat.LogKindError, moverID, message)
	s.bus.Publish(events.EventErrorOccurred, events.ErrorOccurredPayload{Message: message})
}

// resolveReactions processes the server-returned attacker list strictly
// in order. One failed entry never aborts its siblings; that isolation is
// the pipeline's core partial-failure guarantee.
func (s *service) resolveReactions(ctx context.Context, mover combat.Combatant, attackerIDs []string) {
	if len(attackerIDs) == 0 {
		return
	}

	combatID := s.state.CombatID()
	if combatID == "" || mover.ID == "" {
		msg := "cannot resolve reactions without a combat id and mover id"
		s.state.AppendLog(combat.LogKindError, mover.ID, msg)
		s.bus.Publish(events.EventErrorOccurred, events.ErrorOccurredPayload{Message: msg})
		return
	}

	for _, attackerID := range attackerIDs {
		if attackerID == "" {
			continue
		}
		s.resolveReaction(ctx, combatID, mover, attackerID)

		// Short pause so the attack animation lands before the next
		// reaction starts.
		if err := s.clock.Sleep(ctx, s.reactionPause); err != nil {
			return
		}
	}
}

func (s *service) resolveReaction(ctx context.Context, combatID string, mover combat.Combatant, attackerID string) {
	attacker, found := s.state.FindCombatant(attackerID)
	attackerName := attackerID
	if found {
		attackerName = attacker.Name
	}

	// Announce before attempting, so the log shows the attempt even when
	// the call fails.
	s.state.AppendLog(combat.LogKindReaction, attackerID,
		fmt.Sprintf("%s takes an opportunity attack against %s!", attackerName, mover.Name))

	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	result, err := s.gateway.UseReaction(callCtx, combatID, attackerID, combat.ReactionKindOpportunityAttack, mover.ID)
	cancel()

	if err != nil || result == nil || !result.Success {
		desc := "the reaction could not be resolved"
		if err != nil {
			desc = err.Error()
		} else if result != nil && result.Description != "" {
			desc = result.Description
		}
		msg := fmt.Sprintf("%s's opportunity attack failed: %s", attackerName, desc)
		s.state.AppendLog(combat.LogKindError, attackerID, msg)
		s.bus.Publish(events.EventErrorOccurred, events.ErrorOccurredPayload{Message: msg})
		return
	}

	hit := result.DamageDealt > 0

	if s.presenter != nil {
		roll := reactionRollData(attackerName, mover.Name, hit, result)
		if err := s.presenter.PlayAttackSequence(ctx, roll, &presenter.PlayOptions{ClickToRoll: s.clickToRoll}); err != nil {
			// Presentation is cosmetic; the reaction already resolved.
			log.Printf("Movement: roll presentation failed: %v", err)
		}
	}

	desc := result.Description
	if desc == "" {
		if hit {
			desc = fmt.Sprintf("%s hits %s for %d damage", attackerName, mover.Name, result.DamageDealt)
		} else {
			desc = fmt.Sprintf("%s misses %s", attackerName, mover.Name)
		}
	}
	s.state.AppendLog(combat.LogKindAttack, attackerID, desc)

	s.bus.Publish(events.EventReactionResolved, events.ReactionResolvedPayload{
		AttackerID:  attackerID,
		TargetID:    mover.ID,
		Hit:         hit,
		Damage:      result.DamageDealt,
		Description: desc,
	})

	s.state.Merge(result.CombatState)
}

// reactionRollData prefers the server's roll detail; otherwise the
// presenter gets a minimal payload and fills its own defaults
func reactionRollData(attackerName, targetName string, hit bool, result *arena.ReactionResult) *combat.RollData {
	if result.Roll != nil {
		roll := *result.Roll
		if roll.AttackerName == "" {
			roll.AttackerName = attackerName
		}
		if roll.TargetName == "" {
			roll.TargetName = targetName
		}
		return &roll
	}

	return &combat.RollData{
		AttackerName: attackerName,
		TargetName:   targetName,
		Hit:          hit,
		DamageTotal:  result.DamageDealt,
		Description:  result.Description,
	}
}

// PreviewPath implements Service.PreviewPath
func (s *service) PreviewPath(target combat.Position) {
	s.mu.Lock()
	moving := s.phase != PhaseIdle
	s.mu.Unlock()

	if moving {
		// Hover recomputation would corrupt the in-flight preview.
		return
	}

	mover, ok := s.state.Combatant(s.state.LocalCombatantID())
	if !ok {
		return
	}
	s.state.SetPathPreview(combat.ComputePath(mover.Position, target))
}

// RefreshReachable implements Service.RefreshReachable
func (s *service) RefreshReachable(ctx context.Context) error {
	combatID := s.state.CombatID()
	moverID := s.state.LocalCombatantID()
	if combatID == "" || moverID == "" {
		return dnderr.FailedPrecondition("no combat loaded")
	}

	callCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	cells, err := s.gateway.GetReachableCells(callCtx, combatID, moverID)
	if err != nil {
		return dnderr.Wrap(err, "failed to fetch reachable cells")
	}

	s.state.SetReachableCells(cells)
	return nil
}
