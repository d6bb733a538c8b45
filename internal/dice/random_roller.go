package dice

import (
	"errors"
	"math/rand"
)

// randomRoller implements Roller using math/rand
type randomRoller struct{}

// NewRandomRoller creates a new random dice roller
func NewRandomRoller() Roller {
	return &randomRoller{}
}

// Roll implements Roller.Roll
func (r *randomRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	if count < 1 {
		return nil, errors.New("invalid dice count")
	}
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	rolls := make([]int, count)
	total := 0
	for i := 0; i < count; i++ {
		roll := rand.Intn(sides) + 1
		rolls[i] = roll
		total += roll
	}

	result := &RollResult{
		Total:    total + bonus,
		Rolls:    rolls,
		Bonus:    bonus,
		Count:    count,
		Sides:    sides,
		RawTotal: total,
	}

	if count == 1 && sides == 20 {
		result.IsCrit = rolls[0] == 20
		result.IsFumble = rolls[0] == 1
	}

	return result, nil
}

// RollWithAdvantage implements Roller.RollWithAdvantage
func (r *randomRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	return r.rollTwice(sides, bonus, true)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (r *randomRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	return r.rollTwice(sides, bonus, false)
}

func (r *randomRoller) rollTwice(sides, bonus int, keepHigher bool) (*RollResult, error) {
	if sides < 1 {
		return nil, errors.New("invalid dice size")
	}

	roll1 := rand.Intn(sides) + 1
	roll2 := rand.Intn(sides) + 1

	kept, dropped := roll1, roll2
	if (roll2 > roll1) == keepHigher && roll1 != roll2 {
		kept, dropped = roll2, roll1
	}

	result := &RollResult{
		Total:    kept + bonus,
		Rolls:    []int{kept, dropped},
		Bonus:    bonus,
		Count:    1,
		Sides:    sides,
		RawTotal: kept,
	}

	if sides == 20 {
		result.IsCrit = kept == 20
		result.IsFumble = kept == 1
	}

	return result, nil
}
