package combatlog

//go:generate mockgen -destination=mock/mock_repository.go -package=mockcombatlog -source=repository.go

import (
	"context"

	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
)

// Repository defines storage for combat log entries, keyed by combat id
type Repository interface {
	// Append stores a new log entry
	Append(ctx context.Context, entry combat.LogEntry) error

	// List retrieves all entries for a combat, oldest first
	List(ctx context.Context, combatID string) ([]combat.LogEntry, error)

	// Clear removes all entries for a combat
	Clear(ctx context.Context, combatID string) error
}
