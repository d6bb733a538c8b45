package state

import (
	"context"
	"log"
	"sync"

	"github.com/CrwnG/DndProyect-sub001/internal/clock"
	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	"github.com/CrwnG/DndProyect-sub001/internal/events"
	"github.com/CrwnG/DndProyect-sub001/internal/repositories/combatlog"
	"github.com/CrwnG/DndProyect-sub001/internal/uuid"
)

// Store holds the client's view of the combat session: combatants, turn
// state, the reachable-cell set, path preview, UI mode flags, and the
// combat log. Many collaborators read it; writers publish change events
// on the bus so readers re-render.
//
// Positions are authoritative only after a confirmed server response;
// nothing here is mutated optimistically.
type Store struct {
	mu sync.RWMutex

	combatID          string
	localCombatantID  string
	activeCombatantID string
	round             int

	combatants map[string]*combat.Combatant
	order      []string // insertion order, used for scans and rendering

	reachable     map[combat.Position]bool
	pathPreview   []combat.Position
	movementArmed bool
	targeting     bool

	log []combat.LogEntry

	bus     *events.Bus
	uuidGen uuid.Generator
	clock   clock.Clock
	logRepo combatlog.Repository
}

// StoreConfig holds the dependencies for a Store
type StoreConfig struct {
	Bus           *events.Bus
	UUIDGenerator uuid.Generator
	Clock         clock.Clock

	// LogRepository is optional; when set, log entries are mirrored to it
	// best-effort
	LogRepository combatlog.Repository
}

// NewStore creates an empty combat state store
func NewStore(cfg *StoreConfig) *Store {
	if cfg == nil || cfg.Bus == nil {
		panic("event bus is required")
	}

	s := &Store{
		combatants: make(map[string]*combat.Combatant),
		reachable:  make(map[combat.Position]bool),
		bus:        cfg.Bus,
		uuidGen:    cfg.UUIDGenerator,
		clock:      cfg.Clock,
		logRepo:    cfg.LogRepository,
	}
	if s.uuidGen == nil {
		s.uuidGen = uuid.NewGoogleUUIDGenerator()
	}
	if s.clock == nil {
		s.clock = clock.NewRealClock()
	}
	return s
}

// Reset loads a fresh combat session into the store
func (s *Store) Reset(combatID, localCombatantID string, combatants []*combat.Combatant) {
	s.mu.Lock()
	s.combatID = combatID
	s.localCombatantID = localCombatantID
	s.activeCombatantID = ""
	s.round = 0
	s.combatants = make(map[string]*combat.Combatant, len(combatants))
	s.order = s.order[:0]
	for _, c := range combatants {
		s.combatants[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	s.reachable = make(map[combat.Position]bool)
	s.pathPreview = nil
	s.movementArmed = false
	s.targeting = false
	s.log = nil
	s.mu.Unlock()

	s.bus.Publish(events.EventStateChanged, nil)
}

// CombatID returns the current combat session id, empty when no combat
// is loaded
func (s *Store) CombatID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.combatID
}

// LocalCombatantID returns the combatant controlled by this client
func (s *Store) LocalCombatantID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localCombatantID
}

// IsLocalTurn reports whether the active turn belongs to this client's
// combatant
func (s *Store) IsLocalTurn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCombatantID != "" && s.activeCombatantID == s.localCombatantID
}

// SetActiveTurn records whose turn it is
func (s *Store) SetActiveTurn(combatantID string, round int) {
	s.mu.Lock()
	s.activeCombatantID = combatantID
	s.round = round
	s.mu.Unlock()

	s.bus.Publish(events.EventStateChanged, nil)
}

// Combatant returns a copy of the combatant with the given id
func (s *Store) Combatant(id string) (combat.Combatant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.combatants[id]
	if !ok {
		return combat.Combatant{}, false
	}
	return *c, true
}

// FindCombatant looks the id up directly, then falls back to a linear
// scan comparing stored IDs. The fallback covers servers that key their
// reaction entries inconsistently with the roster they sent.
func (s *Store) FindCombatant(id string) (combat.Combatant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.combatants[id]; ok {
		return *c, true
	}
	for _, key := range s.order {
		if c := s.combatants[key]; c != nil && c.ID == id {
			return *c, true
		}
	}
	return combat.Combatant{}, false
}

// CombatantAt returns the combatant occupying the given cell, if any
func (s *Store) CombatantAt(pos combat.Position) (combat.Combatant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, key := range s.order {
		c := s.combatants[key]
		if c != nil && c.IsActive && c.Position == pos {
			return *c, true
		}
	}
	return combat.Combatant{}, false
}

// Combatants returns copies of all combatants in roster order
func (s *Store) Combatants() []combat.Combatant {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]combat.Combatant, 0, len(s.order))
	for _, key := range s.order {
		if c := s.combatants[key]; c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// SetPosition writes a server-confirmed position for a combatant
func (s *Store) SetPosition(id string, pos combat.Position) {
	s.mu.Lock()
	if c, ok := s.combatants[id]; ok {
		c.Position = pos
	}
	s.mu.Unlock()

	s.bus.Publish(events.EventStateChanged, nil)
}

// SpendMovement decrements a combatant's remaining movement budget by the
// server-reported distance, clamping at zero
func (s *Store) SpendMovement(id string, distance int) {
	s.mu.Lock()
	if c, ok := s.combatants[id]; ok {
		c.MovementLeft -= distance
		if c.MovementLeft < 0 {
			c.MovementLeft = 0
		}
	}
	s.mu.Unlock()

	s.bus.Publish(events.EventStateChanged, nil)
}

// SetReachableCells replaces the reachable-cell set with the server's
// latest answer
func (s *Store) SetReachableCells(cells []combat.Position) {
	s.mu.Lock()
	s.reachable = make(map[combat.Position]bool, len(cells))
	for _, c := range cells {
		s.reachable[c] = true
	}
	s.mu.Unlock()

	s.bus.Publish(events.EventStateChanged, nil)
}

// IsReachable reports whether the cell is in the current reachable set
func (s *Store) IsReachable(pos combat.Position) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reachable[pos]
}

// SetPathPreview stores the cosmetic hover/animation path
func (s *Store) SetPathPreview(path []combat.Position) {
	s.mu.Lock()
	s.pathPreview = path
	s.mu.Unlock()
}

// ClearPathPreview drops the cosmetic path
func (s *Store) ClearPathPreview() {
	s.SetPathPreview(nil)
}

// PathPreview returns a copy of the current cosmetic path
func (s *Store) PathPreview() []combat.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]combat.Position, len(s.pathPreview))
	copy(out, s.pathPreview)
	return out
}

// ArmMovement toggles movement mode. Clicking a cell only counts as a
// move when this is armed; otherwise clicks select.
func (s *Store) ArmMovement(armed bool) {
	s.mu.Lock()
	s.movementArmed = armed
	s.mu.Unlock()
}

// MovementArmed reports whether movement mode is armed
func (s *Store) MovementArmed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.movementArmed
}

// SetTargeting toggles targeting mode (spell/attack target picking)
func (s *Store) SetTargeting(targeting bool) {
	s.mu.Lock()
	s.targeting = targeting
	s.mu.Unlock()
}

// Targeting reports whether the client is picking a target
func (s *Store) Targeting() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.targeting
}

// AppendLog adds a combat log entry, publishes it on the bus, and mirrors
// it to the log repository when one is configured
func (s *Store) AppendLog(kind combat.LogEntryKind, actorID, message string) combat.LogEntry {
	s.mu.Lock()
	entry := combat.LogEntry{
		ID:        s.uuidGen.New(),
		CombatID:  s.combatID,
		Kind:      kind,
		Message:   message,
		ActorID:   actorID,
		CreatedAt: s.clock.Now(),
	}
	s.log = append(s.log, entry)
	s.mu.Unlock()

	if s.logRepo != nil {
		if err := s.logRepo.Append(context.Background(), entry); err != nil {
			log.Printf("Store: failed to persist log entry: %v", err)
		}
	}

	s.bus.Publish(events.EventLogAppended, entry)
	return entry
}

// Log returns a copy of the combat log
func (s *Store) Log() []combat.LogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]combat.LogEntry, len(s.log))
	copy(out, s.log)
	return out
}

// Merge folds a server-pushed state snapshot into the store. Known
// combatants get their HP and position updated; unknown ones are added.
func (s *Store) Merge(snapshot *combat.StateSnapshot) {
	if snapshot == nil {
		return
	}

	s.mu.Lock()
	if snapshot.Round > 0 {
		s.round = snapshot.Round
	}
	if snapshot.ActiveCombatantID != "" {
		s.activeCombatantID = snapshot.ActiveCombatantID
	}
	for _, in := range snapshot.Combatants {
		if existing, ok := s.combatants[in.ID]; ok {
			existing.CurrentHP = in.CurrentHP
			existing.Position = in.Position
			existing.IsActive = in.IsActive
			continue
		}
		c := in
		s.combatants[c.ID] = &c
		s.order = append(s.order, c.ID)
	}
	s.mu.Unlock()

	s.bus.Publish(events.EventStateChanged, nil)
}

// Round returns the current combat round
func (s *Store) Round() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.round
}
