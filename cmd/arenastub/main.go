// Command arenastub is a stand-in combat server for local development.
// It owns a single demo encounter and answers the three gateway
// endpoints the client speaks, with simplified rules: chebyshev
// reachability, fixed AC, and d20+4 / 1d6+2 opportunity attacks.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/CrwnG/DndProyect-sub001/internal/dice"
	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
)

const (
	feetPerCell = 5
	defenderAC  = 14
	attackBonus = 4
	damageBonus = 2
)

type arena struct {
	mu     sync.Mutex
	roller dice.Roller

	combatID   string
	round      int
	activeID   string
	order      []string
	combatants map[string]*combat.Combatant

	streamMu sync.Mutex
	streams  map[*websocket.Conn]struct{}
}

func newDemoArena() *arena {
	a := &arena{
		roller:     dice.NewRandomRoller(),
		combatID:   "demo",
		round:      1,
		activeID:   "hero-1",
		combatants: make(map[string]*combat.Combatant),
		streams:    make(map[*websocket.Conn]struct{}),
	}
	for _, c := range []*combat.Combatant{
		{ID: "hero-1", Name: "Aria", Type: combat.CombatantTypePlayer, Position: combat.Position{X: 2, Y: 2}, CurrentHP: 24, MaxHP: 24, Speed: 30, MovementLeft: 30, IsActive: true},
		{ID: "goblin-1", Name: "Goblin Skirmisher", Type: combat.CombatantTypeMonster, Position: combat.Position{X: 3, Y: 2}, CurrentHP: 7, MaxHP: 7, Speed: 30, MovementLeft: 30, IsActive: true},
		{ID: "goblin-2", Name: "Goblin Archer", Type: combat.CombatantTypeMonster, Position: combat.Position{X: 6, Y: 5}, CurrentHP: 7, MaxHP: 7, Speed: 30, MovementLeft: 30, IsActive: true},
	} {
		a.combatants[c.ID] = c
		a.order = append(a.order, c.ID)
	}
	return a
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// chebyshev is the grid distance in cells: diagonals count as one
func chebyshev(a, b combat.Position) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func (a *arena) occupied(pos combat.Position, exceptID string) bool {
	for _, c := range a.combatants {
		if c.ID != exceptID && c.IsAlive() && c.Position == pos {
			return true
		}
	}
	return false
}

func (a *arena) reachableFor(c *combat.Combatant) []combat.Position {
	radius := c.MovementLeft / feetPerCell
	cells := []combat.Position{}
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			pos := combat.Position{X: c.Position.X + dx, Y: c.Position.Y + dy}
			if pos.X < 0 || pos.Y < 0 {
				continue
			}
			if a.occupied(pos, c.ID) {
				continue
			}
			cells = append(cells, pos)
		}
	}
	return cells
}

func (a *arena) snapshot() *combat.StateSnapshot {
	snap := &combat.StateSnapshot{
		CombatID:          a.combatID,
		Round:             a.round,
		ActiveCombatantID: a.activeID,
	}
	for _, id := range a.order {
		snap.Combatants = append(snap.Combatants, *a.combatants[id])
	}
	return snap
}

func (a *arena) broadcast(snap *combat.StateSnapshot) {
	a.streamMu.Lock()
	defer a.streamMu.Unlock()
	for conn := range a.streams {
		if err := conn.WriteJSON(snap); err != nil {
			log.Printf("stream write failed, dropping subscriber: %v", err)
			_ = conn.Close()
			delete(a.streams, conn)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *arena) lookup(w http.ResponseWriter, r *http.Request) (*combat.Combatant, bool) {
	vars := mux.Vars(r)
	if vars["combatID"] != a.combatID {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown combat"})
		return nil, false
	}
	c, ok := a.combatants[vars["combatantID"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown combatant"})
		return nil, false
	}
	return c, true
}

func (a *arena) handleReachable(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"reachable": a.reachableFor(c)})
}

type moveRequest struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type moveResponse struct {
	Success            bool     `json:"success"`
	Distance           int      `json:"distance,omitempty"`
	Description        string   `json:"description,omitempty"`
	OpportunityAttacks []string `json:"opportunity_attacks,omitempty"`
}

func (a *arena) handleMove(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	c, ok := a.lookup(w, r)
	if !ok {
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body"})
		return
	}
	target := combat.Position{X: req.X, Y: req.Y}

	if c.ID != a.activeID {
		writeJSON(w, http.StatusOK, moveResponse{Description: "it is not your turn"})
		return
	}
	distance := chebyshev(c.Position, target) * feetPerCell
	if distance == 0 || distance > c.MovementLeft {
		writeJSON(w, http.StatusOK, moveResponse{Description: "target cell is out of range"})
		return
	}
	if a.occupied(target, c.ID) {
		writeJSON(w, http.StatusOK, moveResponse{Description: "target cell is occupied"})
		return
	}

	// Leaving an enemy's melee reach provokes; an attacker only gets one
	// reaction per round, which the stub does not track across moves.
	var provokers []string
	for _, id := range a.order {
		enemy := a.combatants[id]
		if enemy.ID == c.ID || enemy.Type == c.Type || !enemy.IsAlive() {
			continue
		}
		if chebyshev(enemy.Position, c.Position) == 1 && chebyshev(enemy.Position, target) > 1 {
			provokers = append(provokers, enemy.ID)
		}
	}

	from := c.Position
	c.Position = target
	c.MovementLeft -= distance

	log.Printf("%s moved %s -> %s (%d ft, %d provoked)", c.Name, from, target, distance, len(provokers))
	a.broadcast(a.snapshot())

	writeJSON(w, http.StatusOK, moveResponse{
		Success:            true,
		Distance:           distance,
		OpportunityAttacks: provokers,
	})
}

type reactionRequest struct {
	Kind            string `json:"kind"`
	TriggerSourceID string `json:"trigger_source_id"`
}

type reactionResponse struct {
	Success     bool                  `json:"success"`
	DamageDealt int                   `json:"damage_dealt,omitempty"`
	Description string                `json:"description,omitempty"`
	CombatState *combat.StateSnapshot `json:"combat_state,omitempty"`
	Roll        *combat.RollData      `json:"roll,omitempty"`
}

func (a *arena) handleReaction(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	defer a.mu.Unlock()

	reactor, ok := a.lookup(w, r)
	if !ok {
		return
	}

	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body"})
		return
	}
	if req.Kind != combat.ReactionKindOpportunityAttack {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unsupported reaction kind"})
		return
	}
	target, ok := a.combatants[req.TriggerSourceID]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown trigger source"})
		return
	}

	attack, err := a.roller.Roll(1, 20, attackBonus)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "roll failed"})
		return
	}

	roll := &combat.RollData{
		AttackerName: reactor.Name,
		TargetName:   target.Name,
		Mode:         combat.RollModeNormal,
		AttackDie:    attack.RawTotal,
		AttackBonus:  attackBonus,
		AttackTotal:  attack.Total,
		Critical:     attack.IsCrit,
		Hit:          attack.IsCrit || (!attack.IsFumble && attack.Total >= defenderAC),
	}

	resp := reactionResponse{Success: true, Roll: roll}
	if roll.Hit {
		damage, rollErr := a.roller.Roll(1, 6, damageBonus)
		if rollErr != nil {
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "roll failed"})
			return
		}
		total := damage.Total
		if roll.Critical {
			// Crits double the dice, not the bonus
			total += damage.RawTotal
		}
		roll.DamageDice = damage.Rolls
		roll.DamageSides = 6
		roll.DamageTotal = total

		target.CurrentHP -= total
		if target.CurrentHP <= 0 {
			target.CurrentHP = 0
			target.IsActive = false
		}
		resp.DamageDealt = total
		log.Printf("%s hit %s for %d (%d/%d HP)", reactor.Name, target.Name, total, target.CurrentHP, target.MaxHP)
	} else {
		log.Printf("%s missed %s (%d vs AC %d)", reactor.Name, target.Name, roll.AttackTotal, defenderAC)
	}

	snap := a.snapshot()
	resp.CombatState = snap
	a.broadcast(snap)
	writeJSON(w, http.StatusOK, resp)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (a *arena) handleStream(w http.ResponseWriter, r *http.Request) {
	if mux.Vars(r)["combatID"] != a.combatID {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown combat"})
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("stream upgrade failed: %v", err)
		return
	}

	a.mu.Lock()
	snap := a.snapshot()
	a.mu.Unlock()

	// Send the full initial snapshot before registering so it cannot
	// interleave with a broadcast write.
	if err := conn.WriteJSON(snap); err != nil {
		log.Printf("initial snapshot write failed: %v", err)
		_ = conn.Close()
		return
	}

	a.streamMu.Lock()
	a.streams[conn] = struct{}{}
	a.streamMu.Unlock()
	log.Printf("stream subscriber connected from %s", r.RemoteAddr)

	// Drain reads to notice disconnects; subscribers never send data
	go func() {
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				a.streamMu.Lock()
				delete(a.streams, conn)
				a.streamMu.Unlock()
				_ = conn.Close()
				return
			}
		}
	}()
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	addr := os.Getenv("ARENA_LISTEN_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	a := newDemoArena()

	r := mux.NewRouter()
	r.HandleFunc("/combats/{combatID}/combatants/{combatantID}/reachable", a.handleReachable).Methods(http.MethodGet)
	r.HandleFunc("/combats/{combatID}/combatants/{combatantID}/move", a.handleMove).Methods(http.MethodPost)
	r.HandleFunc("/combats/{combatID}/combatants/{combatantID}/reaction", a.handleReaction).Methods(http.MethodPost)
	r.HandleFunc("/combats/{combatID}/stream", a.handleStream)

	log.Printf("arena stub listening on %s (combat %q)", addr, a.combatID)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}
