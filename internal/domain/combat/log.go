package combat

import "time"

// LogEntryKind categorizes combat log entries
type LogEntryKind string

const (
	LogKindMovement LogEntryKind = "movement"
	LogKindAttack   LogEntryKind = "attack"
	LogKindReaction LogEntryKind = "reaction"
	LogKindInfo     LogEntryKind = "info"
	LogKindError    LogEntryKind = "error"
)

// LogEntry is one line of the combat log
type LogEntry struct {
	ID        string       `json:"id"`
	CombatID  string       `json:"combat_id"`
	Kind      LogEntryKind `json:"kind"`
	Message   string       `json:"message"`
	ActorID   string       `json:"actor_id,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
}
