package arena

//go:generate mockgen -destination=mock/mock_client.go -package=mockarena -source=interface.go

import (
	"context"

	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
)

// MoveResult is the server's answer to a move request. Success false
// means the server refused a move that looked legal client-side.
type MoveResult struct {
	Success            bool     `json:"success"`
	Distance           int      `json:"distance,omitempty"` // feet actually spent
	Description        string   `json:"description,omitempty"`
	OpportunityAttacks []string `json:"opportunity_attacks,omitempty"` // attacker ids, in resolution order
}

// ReactionResult is the server's answer to a reaction resolution
type ReactionResult struct {
	Success     bool                  `json:"success"`
	DamageDealt int                   `json:"damage_dealt,omitempty"`
	Description string                `json:"description,omitempty"`
	CombatState *combat.StateSnapshot `json:"combat_state,omitempty"`
	Roll        *combat.RollData      `json:"roll,omitempty"`
}

// Client is the remote combat gateway. The server owns every rule;
// the client never computes legality, cost, or damage itself.
type Client interface {
	// GetReachableCells returns the cells the combatant may still move to
	// this turn
	GetReachableCells(ctx context.Context, combatID, combatantID string) ([]combat.Position, error)

	// MoveCombatant asks the server to move a combatant to (x, y)
	MoveCombatant(ctx context.Context, combatID, combatantID string, x, y int) (*MoveResult, error)

	// UseReaction resolves one triggered reaction (e.g. an opportunity
	// attack) against the combatant that triggered it
	UseReaction(ctx context.Context, combatID, reactorID, reactionKind, triggerSourceID string) (*ReactionResult, error)
}
