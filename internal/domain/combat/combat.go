package combat

import "fmt"

// CombatantType represents the type of combatant
type CombatantType string

const (
	CombatantTypePlayer  CombatantType = "player"
	CombatantTypeMonster CombatantType = "monster"
	CombatantTypeNPC     CombatantType = "npc"
)

// Position is a cell on the battle grid
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Combatant represents a participant in combat as the client sees it.
// Rules data (AC, abilities, actions) lives server-side; the client only
// tracks what it needs to render and validate intents locally.
type Combatant struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Type         CombatantType `json:"type"`
	Position     Position      `json:"position"`
	CurrentHP    int           `json:"current_hp"`
	MaxHP        int           `json:"max_hp"`
	Speed        int           `json:"speed"`
	MovementLeft int           `json:"movement_left"` // remaining movement budget this turn, in feet
	IsActive     bool          `json:"is_active"`     // still in combat
}

// IsAlive returns true if the combatant has more than 0 HP
func (c *Combatant) IsAlive() bool {
	return c.CurrentHP > 0
}

// Reaction is one server-declared triggered response to a move,
// resolved strictly in the order the server returned it.
type Reaction struct {
	AttackerID      string `json:"attacker_id"`
	TriggerTargetID string `json:"trigger_target_id"`
	Kind            string `json:"kind"`
}

// ReactionKindOpportunityAttack is the only reaction kind the move
// pipeline currently resolves.
const ReactionKindOpportunityAttack = "opportunity_attack"
