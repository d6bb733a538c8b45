package combatlog

import (
	"context"
	"sync"

	"github.com/CrwnG/DndProyect-sub001/internal/domain/combat"
)

type inMemoryRepository struct {
	mu      sync.RWMutex
	entries map[string][]combat.LogEntry // combatID -> entries
}

// NewInMemoryRepository creates a new in-memory combat log repository,
// used in tests and offline play
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		entries: make(map[string][]combat.LogEntry),
	}
}

// Append stores a new log entry
func (r *inMemoryRepository) Append(ctx context.Context, entry combat.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[entry.CombatID] = append(r.entries[entry.CombatID], entry)
	return nil
}

// List retrieves all entries for a combat, oldest first
func (r *inMemoryRepository) List(ctx context.Context, combatID string) ([]combat.LogEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entries := r.entries[combatID]
	out := make([]combat.LogEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// Clear removes all entries for a combat
func (r *inMemoryRepository) Clear(ctx context.Context, combatID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, combatID)
	return nil
}
