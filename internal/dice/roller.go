package dice

//go:generate mockgen -destination=mock/mock_roller.go -package=mockdice -source=roller.go

// RollResult contains the outcome of one dice roll
type RollResult struct {
	Total    int   // Sum of kept dice plus bonus
	Rolls    []int // Individual die results, kept die first for (dis)advantage
	Bonus    int
	Count    int
	Sides    int
	RawTotal int  // Total before bonus
	IsCrit   bool // natural 20 on a single d20
	IsFumble bool // natural 1 on a single d20
}

// Roller provides an interface for rolling dice.
// This allows us to inject different implementations for testing.
type Roller interface {
	// Roll rolls a number of dice with the given sides and adds a bonus
	Roll(count, sides, bonus int) (*RollResult, error)

	// RollWithAdvantage rolls two dice and keeps the higher
	RollWithAdvantage(sides, bonus int) (*RollResult, error)

	// RollWithDisadvantage rolls two dice and keeps the lower
	RollWithDisadvantage(sides, bonus int) (*RollResult, error)
}
