package game

// MiniGameView is the player-visible part of a pending mini-game.
type MiniGameView struct {
	Kind   MiniGameKind `json:"kind"`
	Offer  string       `json:"offer"`
	Prompt string       `json:"prompt"`
}

// Snapshot is everything the display surface renders for a run.
type Snapshot struct {
	Phase         Phase         `json:"phase"`
	Day           int           `json:"day"`
	JourneyLength int           `json:"journey_length"`
	Landmark      string        `json:"landmark"`
	Health        int           `json:"health"`
	Food          int           `json:"food"`
	Water         int           `json:"water"`
	Currency      int           `json:"currency"`
	Resting       bool          `json:"resting"`
	Terminal      bool          `json:"terminal"`
	Character     *Character    `json:"character,omitempty"`
	Wagon         []SupplyStock `json:"wagon"`
	CanStart      bool          `json:"can_start"`
	AdvanceLabel  string        `json:"advance_label"`
	Headline      string        `json:"headline,omitempty"`
	MiniGame      *MiniGameView `json:"minigame,omitempty"`
}

// Snapshot copies the state into a value safe to hand to other goroutines.
func (j *Journey) Snapshot() Snapshot {
	s := &j.State
	wagon := make([]SupplyStock, len(s.Wagon))
	copy(wagon, s.Wagon)

	snap := Snapshot{
		Phase:         s.Phase,
		Day:           s.Day,
		JourneyLength: j.Rules.JourneyLength,
		Landmark:      LandmarkName(j.Catalog.Landmarks, s.LandmarkIndex),
		Health:        s.Health,
		Food:          s.Food,
		Water:         s.Water,
		Currency:      s.Currency,
		Resting:       s.Resting,
		Terminal:      s.Terminal(),
		Wagon:         wagon,
		CanStart:      s.Phase == PhaseProvisioning && s.Character != nil && s.WagonUnits() > 0,
		AdvanceLabel:  j.AdvanceLabel(),
		Headline:      j.Headline(),
	}
	if s.Character != nil {
		ch := *s.Character
		snap.Character = &ch
	}
	if s.Pending != nil {
		snap.MiniGame = &MiniGameView{
			Kind:   s.Pending.Kind,
			Offer:  s.Pending.Offer(),
			Prompt: s.Pending.Prompt(),
		}
	}
	return snap
}
