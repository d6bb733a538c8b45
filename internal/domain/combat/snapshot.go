package combat

// StateSnapshot is a partial view of combat state pushed by the server,
// either inline in a reaction response or over the websocket stream.
// Zero-valued fields mean "unchanged".
type StateSnapshot struct {
	CombatID          string      `json:"combat_id,omitempty"`
	Round             int         `json:"round,omitempty"`
	ActiveCombatantID string      `json:"active_combatant_id,omitempty"`
	Combatants        []Combatant `json:"combatants,omitempty"`
}
