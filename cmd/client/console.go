package main

import (
	"fmt"
	"strings"

	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
	"github.com/CrwnG/DndProyect-sub001/internal/events"
	"github.com/CrwnG/DndProyect-sub001/internal/services/presenter"
	"github.com/CrwnG/DndProyect-sub001/internal/state"
)

// consoleSink renders dice presentation to stdout. It is the terminal
// stand-in for a real game UI surface.
type consoleSink struct{}

func (consoleSink) ShowFrame(kind presenter.FrameKind, faces []int) {
	fmt.Printf("\r  [%s] tumbling: %v        ", kind, faces)
}

func (consoleSink) ShowAttack(view presenter.AttackView) {
	fmt.Println()
	verdict := "MISS"
	if view.Hit {
		verdict = "HIT"
	}
	if view.Critical {
		verdict = "CRITICAL HIT"
	}

	die := fmt.Sprintf("d20: %d", view.KeptDie)
	if view.DroppedDie > 0 {
		die = fmt.Sprintf("d20: %d (dropped %d, %s)", view.KeptDie, view.DroppedDie, view.Mode)
	}
	fmt.Printf("  %s attacks %s — %s + %d = %d → %s\n",
		view.AttackerName, view.TargetName, die, view.Bonus, view.Total, verdict)
	if view.Description != "" {
		fmt.Printf("  %s\n", view.Description)
	}
}

func (consoleSink) ShowDamage(view presenter.DamageView) {
	fmt.Printf("  damage d%d: %v = %d", view.Sides, view.DiceShown, view.Total)
	if view.Critical {
		fmt.Print(" (crit)")
	}
	fmt.Println()
}

func (consoleSink) Hide() {
	fmt.Println()
}

// attachConsolePrinters subscribes narration printers so pipeline events
// show up on the terminal as they happen.
func attachConsolePrinters(bus *events.Bus) {
	bus.Subscribe(events.EventMovementStarted, func(payload any) {
		if p, ok := payload.(events.MovementStartedPayload); ok {
			fmt.Printf(">> %s starts moving %s → %s (%d cells)\n", p.CombatantID, p.From, p.To, len(p.Path))
		}
	})
	bus.Subscribe(events.EventMovementCompleted, func(payload any) {
		if p, ok := payload.(events.MovementCompletedPayload); ok {
			fmt.Printf(">> %s arrived at %s\n", p.CombatantID, p.To)
		}
	})
	bus.Subscribe(events.EventReactionResolved, func(payload any) {
		if p, ok := payload.(events.ReactionResolvedPayload); ok {
			if p.Hit {
				fmt.Printf(">> opportunity attack: %s hits %s for %d\n", p.AttackerID, p.TargetID, p.Damage)
			} else {
				fmt.Printf(">> opportunity attack: %s misses %s\n", p.AttackerID, p.TargetID)
			}
		}
	})
	bus.Subscribe(events.EventCombatantSelected, func(payload any) {
		if p, ok := payload.(events.CombatantSelectedPayload); ok {
			fmt.Printf(">> selected %s at %s\n", p.CombatantID, p.Position)
		}
	})
	bus.Subscribe(events.EventErrorOccurred, func(payload any) {
		if p, ok := payload.(events.ErrorOccurredPayload); ok {
			fmt.Printf("!! %s\n", p.Message)
		}
	})
}

func printState(store *state.Store) {
	fmt.Printf("combat %s, round %d\n", store.CombatID(), store.Round())
	for _, c := range store.Combatants() {
		marker := "  "
		if c.ID == store.LocalCombatantID() {
			marker = "* "
		}
		status := fmt.Sprintf("%d/%d HP, %d ft left", c.CurrentHP, c.MaxHP, c.MovementLeft)
		if !c.IsAlive() {
			status = "down"
		}
		fmt.Printf("%s%-20s %-8s %s  %s\n", marker, c.Name, c.Type, c.Position, status)
	}
	if store.IsLocalTurn() {
		fmt.Println("it is your turn")
	}
}

func printLog(store *state.Store) {
	entries := store.Log()
	if len(entries) == 0 {
		fmt.Println("combat log is empty")
		return
	}
	for _, e := range entries {
		fmt.Printf("  [%s] %s\n", e.Kind, e.Message)
	}
}

func printReachable(store *state.Store) {
	// Reachability is stored as a set; walk a bounded window around the
	// local combatant for display.
	var cells []string
	me, ok := store.Combatant(store.LocalCombatantID())
	if !ok {
		fmt.Println("no local combatant loaded")
		return
	}
	for dy := -6; dy <= 6; dy++ {
		for dx := -6; dx <= 6; dx++ {
			pos := combat.Position{X: me.Position.X + dx, Y: me.Position.Y + dy}
			if store.IsReachable(pos) {
				cells = append(cells, pos.String())
			}
		}
	}
	if len(cells) == 0 {
		fmt.Println("no reachable cells known; try 'reach'")
		return
	}
	fmt.Printf("reachable: %s\n", strings.Join(cells, " "))
}
