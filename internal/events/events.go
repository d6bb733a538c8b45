package events

import (
	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
)

// Event names published by the movement pipeline and its collaborators
const (
	// EventMovementStarted fires before the mover's position is written
	// to shared state, so consumers still see the "from" cell as current
	EventMovementStarted = "movement:started"

	// EventMovementCompleted fires after reaction processing finishes
	EventMovementCompleted = "movement:completed"

	// EventReactionResolved fires once per successfully resolved
	// opportunity attack
	EventReactionResolved = "reaction:opportunityAttackResolved"

	// EventCombatantSelected fires when a click lands on an occupied cell
	// while movement mode is not armed
	EventCombatantSelected = "combatant:selected"

	// EventErrorOccurred carries user-facing failure descriptions
	EventErrorOccurred = "error:occurred"

	// EventStateChanged fires whenever shared combat state mutates
	EventStateChanged = "state:changed"

	// EventLogAppended fires for every new combat log entry
	EventLogAppended = "log:appended"
)

// MovementStartedPayload is the payload for EventMovementStarted
type MovementStartedPayload struct {
	CombatantID string
	From        combat.Position
	To          combat.Position
	Path        []combat.Position
}

// MovementCompletedPayload is the payload for EventMovementCompleted
type MovementCompletedPayload struct {
	CombatantID string
	From        combat.Position
	To          combat.Position
}

// ReactionResolvedPayload is the payload for EventReactionResolved
type ReactionResolvedPayload struct {
	AttackerID  string
	TargetID    string
	Hit         bool
	Damage      int
	Description string
}

// ErrorOccurredPayload is the payload for EventErrorOccurred
type ErrorOccurredPayload struct {
	Message string
}

// CombatantSelectedPayload is the payload for EventCombatantSelected
type CombatantSelectedPayload struct {
	CombatantID string
	Position    combat.Position
}
