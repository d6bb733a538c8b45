package presenter

//go:generate mockgen -destination=mock/mock_presenter.go -package=mockpresenter -source=presenter.go

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/CrwnG/DndProyect-sub001/internal/clock"
	"github.com/CrwnG/DndProyect-sub001/internal/dice"
	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	dnderr "github.com/CrwnG/DndProyect-sub001/internal/errors"
)

// Phase is the presenter's roll-animation state
type Phase string

const (
	PhaseIdle                Phase = "idle"
	PhaseAwaitingPlayerClick Phase = "awaiting_player_click"
	PhaseTumbling            Phase = "tumbling"
	PhaseSettled             Phase = "settled"
)

// FrameKind tells the sink which die group a tumble frame belongs to
type FrameKind string

const (
	FrameAttack FrameKind = "attack"
	FrameDamage FrameKind = "damage"
)

// AttackView is the settled attack-die display
type AttackView struct {
	AttackerName string
	TargetName   string
	Mode         combat.RollMode
	KeptDie      int
	DroppedDie   int // zero when rolling a single die
	Bonus        int
	Total        int
	Hit          bool
	Critical     bool
	Description  string
}

// DamageView is the settled damage-dice display. DiceShown doubles the
// authoritative dice on a critical hit; Total is always the server's
// number.
type DamageView struct {
	DiceShown []int
	Sides     int
	Total     int
	Critical  bool
}

// Sink receives display updates. Concrete UI backends implement it;
// the presenter itself never touches rendering.
type Sink interface {
	// ShowFrame displays one tumble frame. The faces are throwaway
	// pseudo-random values with no semantic meaning.
	ShowFrame(kind FrameKind, faces []int)

	// ShowAttack displays the settled attack roll
	ShowAttack(view AttackView)

	// ShowDamage displays the settled damage roll
	ShowDamage(view DamageView)

	// Hide clears the roll surface after the auto-hide delay
	Hide()
}

// PlayOptions controls one attack sequence
type PlayOptions struct {
	// ClickToRoll gates the animation on an explicit player click
	ClickToRoll bool
}

// Service drives the click-to-roll dice presentation. One sequence at a
// time; a second PlayAttackSequence while one is pending is rejected
// rather than silently replacing the click waiter.
type Service interface {
	// PlayAttackSequence runs the full visual sequence for one resolved
	// attack (attack die, then damage dice on a hit) and returns once the
	// auto-hide delay has elapsed
	PlayAttackSequence(ctx context.Context, roll *combat.RollData, opts *PlayOptions) error

	// Click reports a player input targeting the roll surface
	Click()

	// Phase returns the current animation phase
	Phase() Phase
}

// ServiceConfig holds configuration for the presenter
type ServiceConfig struct {
	Roller dice.Roller
	Clock  clock.Clock
	Sink   Sink

	// FrameInterval is the delay between tumble frames
	FrameInterval time.Duration

	// TumbleDuration is the total length of one die group's tumble
	TumbleDuration time.Duration

	// AutoHideDelay keeps the settled result visible before Hide
	AutoHideDelay time.Duration
}

type service struct {
	roller dice.Roller
	clock  clock.Clock
	sink   Sink

	frameInterval  time.Duration
	tumbleDuration time.Duration
	autoHideDelay  time.Duration

	mu      sync.Mutex
	phase   Phase
	clickCh chan struct{}
}

// NewService creates a presenter
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("presenter config is required")
	}
	if cfg.Sink == nil {
		panic("sink is required")
	}

	svc := &service{
		roller:         cfg.Roller,
		clock:          cfg.Clock,
		sink:           cfg.Sink,
		frameInterval:  cfg.FrameInterval,
		tumbleDuration: cfg.TumbleDuration,
		autoHideDelay:  cfg.AutoHideDelay,
		phase:          PhaseIdle,
	}
	if svc.roller == nil {
		svc.roller = dice.NewRandomRoller()
	}
	if svc.clock == nil {
		svc.clock = clock.NewRealClock()
	}
	if svc.frameInterval <= 0 {
		svc.frameInterval = 80 * time.Millisecond
	}
	if svc.tumbleDuration <= 0 {
		svc.tumbleDuration = 800 * time.Millisecond
	}
	if svc.autoHideDelay <= 0 {
		svc.autoHideDelay = 1500 * time.Millisecond
	}

	return svc
}

// Phase returns the current animation phase
func (s *service) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Click releases a pending click-to-roll wait. Clicks that arrive in any
// other phase are ignored.
func (s *service) Click() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != PhaseAwaitingPlayerClick || s.clickCh == nil {
		return
	}

	select {
	case s.clickCh <- struct{}{}:
	default:
	}
}

// PlayAttackSequence implements Service.PlayAttackSequence
func (s *service) PlayAttackSequence(ctx context.Context, roll *combat.RollData, opts *PlayOptions) error {
	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return dnderr.FailedPreconditionf("a roll presentation is already in progress (phase %s)", s.phase)
	}
	s.phase = PhaseTumbling
	if opts != nil && opts.ClickToRoll {
		s.phase = PhaseAwaitingPlayerClick
		s.clickCh = make(chan struct{}, 1)
	}
	s.mu.Unlock()

	defer s.reset()

	data := sanitize(roll)

	if opts != nil && opts.ClickToRoll {
		if err := s.waitForClick(ctx); err != nil {
			return err
		}
		s.setPhase(PhaseTumbling)
	}

	// Attack die: throwaway faces, then snap to the authoritative value
	// on the last frame.
	if err := s.tumble(ctx, FrameAttack, 20, data.AttackDie); err != nil {
		return err
	}

	s.setPhase(PhaseSettled)
	s.sink.ShowAttack(AttackView{
		AttackerName: data.AttackerName,
		TargetName:   data.TargetName,
		Mode:         data.Mode,
		KeptDie:      data.AttackDie,
		DroppedDie:   data.OffDie,
		Bonus:        data.AttackBonus,
		Total:        data.AttackTotal,
		Hit:          data.Hit,
		Critical:     data.Critical,
		Description:  data.Description,
	})

	if data.Hit && len(data.DamageDice) > 0 {
		shown := data.DamageDice
		if data.Critical {
			// The doubled-dice rule, reflected cosmetically. The total
			// stays whatever the server computed.
			shown = append(append([]int{}, shown...), shown...)
		}

		s.setPhase(PhaseTumbling)
		if err := s.tumbleGroup(ctx, len(shown), data.DamageSides); err != nil {
			return err
		}

		s.setPhase(PhaseSettled)
		s.sink.ShowDamage(DamageView{
			DiceShown: shown,
			Sides:     data.DamageSides,
			Total:     data.DamageTotal,
			Critical:  data.Critical,
		})
	}

	if err := s.clock.Sleep(ctx, s.autoHideDelay); err != nil {
		return err
	}
	s.sink.Hide()
	return nil
}

func (s *service) waitForClick(ctx context.Context) error {
	s.mu.Lock()
	ch := s.clickCh
	s.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// tumble animates one die, ending exactly on finalFace
func (s *service) tumble(ctx context.Context, kind FrameKind, sides, finalFace int) error {
	frames := s.frameCount()

	for i := 0; i < frames-1; i++ {
		s.sink.ShowFrame(kind, []int{s.randomFace(sides)})
		if err := s.clock.Sleep(ctx, s.frameInterval); err != nil {
			return err
		}
	}

	s.sink.ShowFrame(kind, []int{finalFace})
	return nil
}

// tumbleGroup animates a damage-dice group; settled faces come from the
// ShowDamage call that follows, so every frame here is throwaway
func (s *service) tumbleGroup(ctx context.Context, count, sides int) error {
	frames := s.frameCount()

	for i := 0; i < frames; i++ {
		faces := make([]int, count)
		for j := range faces {
			faces[j] = s.randomFace(sides)
		}
		s.sink.ShowFrame(FrameDamage, faces)
		if err := s.clock.Sleep(ctx, s.frameInterval); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) frameCount() int {
	frames := int(s.tumbleDuration / s.frameInterval)
	if frames < 1 {
		frames = 1
	}
	return frames
}

func (s *service) randomFace(sides int) int {
	result, err := s.roller.Roll(1, sides, 0)
	if err != nil || len(result.Rolls) == 0 {
		// Tumble faces are cosmetic; a roller hiccup just shows a 1.
		return 1
	}
	return result.Rolls[0]
}

func (s *service) setPhase(p Phase) {
	s.mu.Lock()
	s.phase = p
	s.mu.Unlock()
}

func (s *service) reset() {
	s.mu.Lock()
	s.phase = PhaseIdle
	s.clickCh = nil
	s.mu.Unlock()
}

// sanitize fills safe defaults for missing roll data. The presenter has
// no error channel of its own, so bad input degrades instead of failing.
func sanitize(roll *combat.RollData) combat.RollData {
	if roll == nil {
		log.Printf("Presenter: nil roll data, using defaults")
		roll = &combat.RollData{}
	}

	data := *roll
	if data.AttackDie < 1 || data.AttackDie > 20 {
		data.AttackDie = 1
	}
	if data.Mode == "" {
		data.Mode = combat.RollModeNormal
	}
	if data.AttackTotal == 0 {
		data.AttackTotal = data.AttackDie + data.AttackBonus
	}
	if data.DamageSides <= 0 {
		data.DamageSides = 6
	}
	if data.AttackerName == "" {
		data.AttackerName = "Unknown attacker"
	}
	if data.TargetName == "" {
		data.TargetName = "Unknown target"
	}
	return data
}
