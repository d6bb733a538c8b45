package combat

// RollMode describes how a d20 roll was made
type RollMode string

const (
	RollModeNormal       RollMode = "normal"
	RollModeAdvantage    RollMode = "advantage"
	RollModeDisadvantage RollMode = "disadvantage"
)

// RollData carries the authoritative result of an attack, ready to be
// presented. The server has already resolved hit/miss and damage; these
// values exist so the animation can end on the true numbers.
type RollData struct {
	AttackerName string   `json:"attacker_name"`
	TargetName   string   `json:"target_name"`
	Mode         RollMode `json:"mode"`
	AttackDie    int      `json:"attack_die"`            // face shown for the kept d20
	OffDie       int      `json:"off_die,omitempty"`     // the discarded die under (dis)advantage
	AttackBonus  int      `json:"attack_bonus"`
	AttackTotal  int      `json:"attack_total"`
	Hit          bool     `json:"hit"`
	Critical     bool     `json:"critical"`
	DamageDice   []int    `json:"damage_dice,omitempty"` // individual damage die faces
	DamageSides  int      `json:"damage_sides,omitempty"`
	DamageTotal  int      `json:"damage_total"`
	Description  string   `json:"description,omitempty"`
}
