package dice_test

import (
	"testing"

	"github.com/CrwnG/DndProyect-sub001/internal/dice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomRoller_Roll(t *testing.T) {
	roller := dice.NewRandomRoller()

	result, err := roller.Roll(4, 6, 2)
	require.NoError(t, err)

	assert.Len(t, result.Rolls, 4)
	assert.Equal(t, result.RawTotal+2, result.Total)
	for _, roll := range result.Rolls {
		assert.GreaterOrEqual(t, roll, 1)
		assert.LessOrEqual(t, roll, 6)
	}
}

func TestRandomRoller_InvalidInput(t *testing.T) {
	roller := dice.NewRandomRoller()

	_, err := roller.Roll(0, 6, 0)
	assert.Error(t, err)

	_, err = roller.Roll(1, 0, 0)
	assert.Error(t, err)
}

func TestMockRoller_Roll(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{3, 5})

	result, err := roller.Roll(2, 6, 1)
	require.NoError(t, err)

	assert.Equal(t, 9, result.Total)
	assert.Equal(t, []int{3, 5}, result.Rolls)
}

func TestMockRoller_Advantage(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{7, 18})

	result, err := roller.RollWithAdvantage(20, 4)
	require.NoError(t, err)

	assert.Equal(t, 22, result.Total)
	assert.Equal(t, []int{18, 7}, result.Rolls)
	assert.False(t, result.IsCrit)
}

func TestMockRoller_DisadvantageCountsFumble(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{1, 18})

	result, err := roller.RollWithDisadvantage(20, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Total)
	assert.True(t, result.IsFumble)
}

func TestMockRoller_CyclesRolls(t *testing.T) {
	roller := dice.NewMockRoller()
	roller.SetRolls([]int{2})

	for i := 0; i < 3; i++ {
		result, err := roller.Roll(1, 6, 0)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
	}
}
