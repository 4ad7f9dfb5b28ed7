package game

// Phase is the state machine position of a run.
type Phase string

const (
	PhaseProvisioning     Phase = "provisioning"
	PhaseInTransit        Phase = "in_transit"
	PhaseResting          Phase = "resting"
	PhaseAwaitingMiniGame Phase = "awaiting_minigame"
	PhaseCompleted        Phase = "completed"
	PhaseFailed           Phase = "failed"
)

// Terminal reports whether the phase only accepts submit or reset.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// SupplyStock is one wagon slot: a catalog supply and how many units are owned.
type SupplyStock struct {
	Supply
	Units int `json:"units"`
}

// JourneyState is the mutable aggregate of a single run.
type JourneyState struct {
	Day           int
	Health        int
	Food          int
	Water         int
	Currency      int
	Resting       bool
	LandmarkIndex int
	Phase         Phase
	Character     *Character
	Wagon         []SupplyStock
	Pending       *MiniGame
}

// NewJourneyState returns the Provisioning defaults for a catalog. Currency
// stays at zero until a character is picked.
func NewJourneyState(cat Catalog) JourneyState {
	wagon := make([]SupplyStock, len(cat.Supplies))
	for i, s := range cat.Supplies {
		wagon[i] = SupplyStock{Supply: s}
	}
	return JourneyState{
		Day:    1,
		Health: MeterMax,
		Food:   MeterMax,
		Water:  MeterMax,
		Phase:  PhaseProvisioning,
		Wagon:  wagon,
	}
}

// Terminal is true once the run has failed or completed.
func (s *JourneyState) Terminal() bool {
	return s.Phase.Terminal()
}

// Depleted reports whether any meter has hit the floor.
func (s *JourneyState) Depleted() bool {
	return s.Health <= MeterMin || s.Food <= MeterMin || s.Water <= MeterMin
}

// WagonUnits returns the total units across all wagon slots.
func (s *JourneyState) WagonUnits() int {
	total := 0
	for _, st := range s.Wagon {
		total += st.Units
	}
	return total
}

func (s *JourneyState) stock(id string) *SupplyStock {
	for i := range s.Wagon {
		if s.Wagon[i].ID == id {
			return &s.Wagon[i]
		}
	}
	return nil
}

// ClampResources pins every meter to [0,100] and currency to >= 0.
func (s *JourneyState) ClampResources() {
	s.Health = clamp(s.Health, MeterMin, MeterMax)
	s.Food = clamp(s.Food, MeterMin, MeterMax)
	s.Water = clamp(s.Water, MeterMin, MeterMax)
	if s.Currency < 0 {
		s.Currency = 0
	}
	for i := range s.Wagon {
		if s.Wagon[i].Units < 0 {
			s.Wagon[i].Units = 0
		}
	}
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
