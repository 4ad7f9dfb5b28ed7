package game

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientFunds = errors.New("not enough dollars")
	ErrUnknownSupply     = errors.New("unknown supply")
	ErrUnknownCharacter  = errors.New("unknown character")
	ErrCharacterLocked   = errors.New("character already chosen for this run")
	ErrNoCharacter       = errors.New("no character selected")
	ErrEmptyWagon        = errors.New("please select a character and purchase at least one item to start")
	ErrNotProvisioning   = errors.New("the shop is closed once the journey starts")
	ErrNotTraveling      = errors.New("the journey has not started")
	ErrAwaitingMiniGame  = errors.New("a mini-game is waiting for your answer")
	ErrNoMiniGame        = errors.New("no mini-game is in progress")
	ErrHuntDayOne        = errors.New("can't hunt on day 1")
	ErrJourneyOver       = errors.New("the journey is over")
	ErrNotFinished       = errors.New("the journey is still underway")
	ErrEmptyName         = errors.New("name cannot be empty")
)

// ApplyDailyDecay drains health, food and water by the rule amounts, floored at 0.
func ApplyDailyDecay(s *JourneyState, r Rules) {
	s.Health = clamp(s.Health-r.Decay.Health, MeterMin, MeterMax)
	s.Food = clamp(s.Food-r.Decay.Food, MeterMin, MeterMax)
	s.Water = clamp(s.Water-r.Decay.Water, MeterMin, MeterMax)
}

// ApplyRest restores health and water, capped at 100, and ends the rest window.
func ApplyRest(s *JourneyState, r Rules) {
	s.Health = clamp(s.Health+r.RestHealth, MeterMin, MeterMax)
	s.Water = clamp(s.Water+r.RestWater, MeterMin, MeterMax)
	s.Resting = false
}

// ApplyMiniGameReward credits food and health. Water and currency are never touched.
func ApplyMiniGameReward(s *JourneyState, res Reward) {
	s.Food = clamp(s.Food+res.FoodEarned, MeterMin, MeterMax)
	s.Health = clamp(s.Health+res.HealthEarned, MeterMin, MeterMax)
	if res.FoodUnits > 0 {
		if st := s.stock(FoodSupplyID); st != nil {
			st.Units += res.FoodUnits
		}
	}
}

// ApplyBaitCost pays for fishing bait out of the food meter.
func ApplyBaitCost(s *JourneyState, bait int) {
	s.Food = clamp(s.Food-bait*BaitFoodCost, MeterMin, MeterMax)
}

// Spend buys one unit of a supply. On rejection nothing changes.
func Spend(s *JourneyState, supply Supply) error {
	if s.Phase != PhaseProvisioning {
		return ErrNotProvisioning
	}
	st := s.stock(supply.ID)
	if st == nil {
		return fmt.Errorf("%w: %s", ErrUnknownSupply, supply.ID)
	}
	if s.Currency < st.Price {
		return fmt.Errorf("%w: %s costs $%d, you have $%d", ErrInsufficientFunds, st.Name, st.Price, s.Currency)
	}
	s.Currency -= st.Price
	st.Units++
	return nil
}
