package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func provisioningState(t *testing.T, dollars int) JourneyState {
	t.Helper()
	s := NewJourneyState(DefaultCatalog())
	s.Currency = dollars
	return s
}

func TestApplyDailyDecayStaysInBounds(t *testing.T) {
	rules := DefaultRules()
	for m := MeterMin; m <= MeterMax; m++ {
		s := JourneyState{Health: m, Food: m, Water: m}
		ApplyDailyDecay(&s, rules)
		assert.GreaterOrEqual(t, s.Health, MeterMin)
		assert.GreaterOrEqual(t, s.Food, MeterMin)
		assert.GreaterOrEqual(t, s.Water, MeterMin)
		assert.LessOrEqual(t, s.Health, MeterMax)
		assert.LessOrEqual(t, s.Food, MeterMax)
		assert.LessOrEqual(t, s.Water, MeterMax)
	}
}

func TestApplyDailyDecayAmounts(t *testing.T) {
	s := JourneyState{Health: 100, Food: 100, Water: 100}
	ApplyDailyDecay(&s, DefaultRules())
	assert.Equal(t, 95, s.Health)
	assert.Equal(t, 90, s.Food)
	assert.Equal(t, 85, s.Water)

	low := JourneyState{Health: 3, Food: 7, Water: 10}
	ApplyDailyDecay(&low, DefaultRules())
	assert.Equal(t, 0, low.Health)
	assert.Equal(t, 0, low.Food)
	assert.Equal(t, 0, low.Water)
}

func TestApplyRestCapsAt100(t *testing.T) {
	rules := DefaultRules()
	for m := MeterMin; m <= MeterMax; m++ {
		s := JourneyState{Health: m, Water: m, Food: m, Resting: true}
		ApplyRest(&s, rules)
		assert.LessOrEqual(t, s.Health, MeterMax)
		assert.LessOrEqual(t, s.Water, MeterMax)
		assert.Equal(t, m, s.Food, "rest must not touch food")
		assert.False(t, s.Resting)
	}

	s := JourneyState{Health: 40, Water: 30, Resting: true}
	ApplyRest(&s, rules)
	assert.Equal(t, 60, s.Health)
	assert.Equal(t, 80, s.Water)
}

func TestApplyMiniGameRewardLeavesWaterAndCurrency(t *testing.T) {
	s := provisioningState(t, 42)
	s.Health, s.Food, s.Water = 95, 85, 20

	ApplyMiniGameReward(&s, Reward{FoodEarned: 20, HealthEarned: 10, FoodUnits: 1})
	assert.Equal(t, 100, s.Health)
	assert.Equal(t, 100, s.Food)
	assert.Equal(t, 20, s.Water)
	assert.Equal(t, 42, s.Currency)
	assert.Equal(t, 1, s.stock(FoodSupplyID).Units)
}

func TestApplyBaitCostFloorsAtZero(t *testing.T) {
	s := JourneyState{Food: 30}
	ApplyBaitCost(&s, 5)
	assert.Equal(t, 0, s.Food)

	s.Food = 80
	ApplyBaitCost(&s, 2)
	assert.Equal(t, 60, s.Food)
}

func TestSpend(t *testing.T) {
	cat := DefaultCatalog()
	tools, ok := cat.FindSupply("tools")
	require.True(t, ok)

	tests := []struct {
		name    string
		dollars int
		wantErr bool
	}{
		{name: "exact change", dollars: 15, wantErr: false},
		{name: "plenty", dollars: 860, wantErr: false},
		{name: "one short", dollars: 14, wantErr: true},
		{name: "broke", dollars: 0, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := provisioningState(t, tc.dollars)
			before := s
			before.Wagon = append([]SupplyStock(nil), s.Wagon...)

			err := Spend(&s, tools)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInsufficientFunds))
				assert.Equal(t, before, s)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.dollars-tools.Price, s.Currency)
			for i, st := range s.Wagon {
				if st.ID == "tools" {
					assert.Equal(t, before.Wagon[i].Units+1, st.Units)
				} else {
					assert.Equal(t, before.Wagon[i].Units, st.Units)
				}
			}
			assert.Equal(t, before.Health, s.Health)
			assert.Equal(t, before.Day, s.Day)
		})
	}
}

func TestSpendOutsideProvisioning(t *testing.T) {
	s := provisioningState(t, 100)
	s.Phase = PhaseInTransit
	food, _ := DefaultCatalog().FindSupply("food")
	assert.ErrorIs(t, Spend(&s, food), ErrNotProvisioning)
	assert.Equal(t, 100, s.Currency)
}

func TestClampResources(t *testing.T) {
	s := JourneyState{Health: 140, Food: -3, Water: 50, Currency: -10,
		Wagon: []SupplyStock{{Supply: Supply{ID: "food"}, Units: -2}}}
	s.ClampResources()
	assert.Equal(t, 100, s.Health)
	assert.Equal(t, 0, s.Food)
	assert.Equal(t, 50, s.Water)
	assert.Equal(t, 0, s.Currency)
	assert.Equal(t, 0, s.Wagon[0].Units)
}
