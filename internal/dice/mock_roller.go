package dice

import (
	"fmt"
	"sync"
)

// MockRoller implements Roller for testing with predetermined results
type MockRoller struct {
	mu        sync.Mutex
	rolls     []int
	rollIndex int
}

// NewMockRoller creates a new mock dice roller
func NewMockRoller() *MockRoller {
	return &MockRoller{}
}

// SetRolls sets the predetermined roll results and resets the index
func (m *MockRoller) SetRolls(rolls []int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rolls = rolls
	m.rollIndex = 0
}

// getNextRoll returns the next predetermined roll, cycling when the list
// runs out so tumble-animation tests never exhaust it
func (m *MockRoller) getNextRoll() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.rolls) == 0 {
		return 0, fmt.Errorf("no predetermined rolls set")
	}

	roll := m.rolls[m.rollIndex%len(m.rolls)]
	m.rollIndex++
	return roll, nil
}

// Roll implements Roller.Roll
func (m *MockRoller) Roll(count, sides, bonus int) (*RollResult, error) {
	rolls := make([]int, count)
	total := 0

	for i := 0; i < count; i++ {
		roll, err := m.getNextRoll()
		if err != nil {
			return nil, err
		}
		if roll < 1 || roll > sides {
			return nil, fmt.Errorf("invalid roll %d for d%d", roll, sides)
		}
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
func (m *MockRoller) RollWithAdvantage(sides, bonus int) (*RollResult, error) {
	return m.rollTwice(sides, bonus, true)
}

// RollWithDisadvantage implements Roller.RollWithDisadvantage
func (m *MockRoller) RollWithDisadvantage(sides, bonus int) (*RollResult, error) {
	return m.rollTwice(sides, bonus, false)
}

func (m *MockRoller) rollTwice(sides, bonus int, keepHigher bool) (*RollResult, error) {
	roll1, err := m.getNextRoll()
	if err != nil {
		return nil, err
	}
	roll2, err := m.getNextRoll()
	if err != nil {
		return nil, err
	}
	if roll1 < 1 || roll1 > sides || roll2 < 1 || roll2 > sides {
		return nil, fmt.Errorf("invalid rolls %d,%d for d%d", roll1, roll2, sides)
	}

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
