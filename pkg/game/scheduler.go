package game

import "math/rand"

// EventScheduler decides once per completed day tick whether to offer a mini-game.
type EventScheduler struct {
	Chance float64
	// Every gates events to days divisible by it; 0 and 1 both mean every day.
	Every int
}

func NewEventScheduler(r Rules) EventScheduler {
	return EventScheduler{Chance: r.EventChance, Every: r.EventEvery}
}

// Eligible reports whether the state may receive an offer at all.
func (e EventScheduler) Eligible(s *JourneyState) bool {
	if s.Terminal() || s.Resting || s.Phase != PhaseInTransit {
		return false
	}
	if e.Every > 1 && s.Day%e.Every != 0 {
		return false
	}
	return true
}

// Roll draws against Chance and, on a hit, picks a kind uniformly.
func (e EventScheduler) Roll(s *JourneyState, rng *rand.Rand) (MiniGameKind, bool) {
	if !e.Eligible(s) {
		return "", false
	}
	if rng.Float64() >= e.Chance {
		return "", false
	}
	return MiniGameKinds[rng.Intn(len(MiniGameKinds))], true
}
