package game

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Journey owns one run: the catalog it was provisioned from, the rules it
// ticks by and the mutable state. It is not safe for concurrent use; the
// runner package serializes access.
type Journey struct {
	Catalog   Catalog
	Rules     Rules
	Scheduler EventScheduler
	Rand      *rand.Rand
	State     JourneyState
}

func NewJourney(cat Catalog, rules Rules, rng *rand.Rand) *Journey {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Journey{
		Catalog:   cat,
		Rules:     rules,
		Scheduler: NewEventScheduler(rules),
		Rand:      rng,
		State:     NewJourneyState(cat),
	}
}

// SelectCharacter fixes the pioneer and starting dollars for this run.
func (j *Journey) SelectCharacter(name string) (string, error) {
	s := &j.State
	if s.Phase != PhaseProvisioning {
		return "", ErrNotProvisioning
	}
	if s.Character != nil {
		return "", ErrCharacterLocked
	}
	ch, ok := j.Catalog.FindCharacter(name)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCharacter, name)
	}
	s.Character = &ch
	s.Currency = ch.Dollars
	return fmt.Sprintf("%s - %s. You have $%d to spend.\n", ch.Name, ch.Bio, ch.Dollars), nil
}

// Buy moves one unit of a supply from the shop into the wagon.
func (j *Journey) Buy(id string) (string, error) {
	s := &j.State
	if s.Phase != PhaseProvisioning {
		return "", ErrNotProvisioning
	}
	if s.Character == nil {
		return "", ErrNoCharacter
	}
	supply, ok := j.Catalog.FindSupply(id)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSupply, id)
	}
	if err := Spend(s, supply); err != nil {
		return "", err
	}
	return fmt.Sprintf("Bought 1 %s for $%d. Dollars remaining: $%d\n", supply.Name, supply.Price, s.Currency), nil
}

// Start leaves Provisioning. The wagon must hold at least one unit.
func (j *Journey) Start() (string, error) {
	s := &j.State
	if s.Phase != PhaseProvisioning {
		return "", ErrNotProvisioning
	}
	if s.Character == nil || s.WagonUnits() == 0 {
		return "", ErrEmptyWagon
	}
	s.Phase = PhaseInTransit
	s.LandmarkIndex = 0
	return fmt.Sprintf("%s sets out from %s.\n", s.Character.Name, LandmarkName(j.Catalog.Landmarks, 0)), nil
}

// Tick is the timer-driven step. It only progresses a run that is in
// transit; rest windows and pending mini-games wait for the player.
func (j *Journey) Tick() (string, bool) {
	if j.State.Phase != PhaseInTransit {
		return "", false
	}
	return j.continueTravel(), true
}

// Advance is the manual control: a day step while in transit, rest
// recovery while resting.
func (j *Journey) Advance() (string, error) {
	s := &j.State
	switch s.Phase {
	case PhaseProvisioning:
		return "", ErrNotTraveling
	case PhaseAwaitingMiniGame:
		return "", ErrAwaitingMiniGame
	case PhaseCompleted, PhaseFailed:
		return "", ErrJourneyOver
	case PhaseResting:
		ApplyRest(s, j.Rules)
		s.Phase = PhaseInTransit
		return fmt.Sprintf("You rest and recover. +%d HP, +%d Water\n", j.Rules.RestHealth, j.Rules.RestWater), nil
	}
	return j.continueTravel(), nil
}

func (j *Journey) continueTravel() string {
	s := &j.State
	result := &strings.Builder{}

	if s.Day >= j.Rules.JourneyLength {
		s.Phase = PhaseCompleted
		result.WriteString(j.Headline() + "\n")
		return result.String()
	}

	ApplyDailyDecay(s, j.Rules)
	if s.Depleted() {
		s.Phase = PhaseFailed
		result.WriteString(j.Headline() + "\n")
		return result.String()
	}

	s.Day++
	prev := s.LandmarkIndex
	s.LandmarkIndex = LandmarkIndex(s.Day, j.Rules.JourneyLength, len(j.Catalog.Landmarks))
	result.WriteString(fmt.Sprintf("Day %d of %d.\n", s.Day, j.Rules.JourneyLength))
	if s.LandmarkIndex != prev {
		result.WriteString(fmt.Sprintf("You have reached %s.\n", LandmarkName(j.Catalog.Landmarks, s.LandmarkIndex)))
	}

	if j.Rules.RestEvery > 0 && s.Day%j.Rules.RestEvery == 0 {
		s.Resting = true
		s.Phase = PhaseResting
		result.WriteString("Time to make camp. Rest to recover HP & Water.\n")
		return result.String()
	}

	if kind, ok := j.Scheduler.Roll(s, j.Rand); ok {
		if m, err := RollMiniGame(kind, s.Day, j.Rand); err == nil {
			s.Pending = m
			s.Phase = PhaseAwaitingMiniGame
			result.WriteString(m.Offer() + "\n")
		}
	}
	return result.String()
}

// Play answers the pending mini-game and resumes the journey.
func (j *Journey) Play(input string) (Outcome, error) {
	s := &j.State
	if s.Phase != PhaseAwaitingMiniGame || s.Pending == nil {
		return Outcome{}, ErrNoMiniGame
	}
	m := s.Pending

	var out Outcome
	var err error
	switch m.Kind {
	case KindGuess:
		out = ResolveGuess(m.Secret, input)
	case KindHunt:
		out, err = ResolveHunt(m.Day, m.Targets, input)
		if err != nil {
			return out, err
		}
	case KindFish:
		bait := ParseBait(input)
		caught := false
		if bait > 0 {
			ApplyBaitCost(s, bait)
			caught = j.Rand.Float64() < CatchChance
		}
		out = ResolveFishing(m.FishCount, bait, caught)
	}

	ApplyMiniGameReward(s, out.Reward)
	s.Pending = nil
	s.Phase = PhaseInTransit
	if s.Depleted() {
		s.Phase = PhaseFailed
	}
	return out, nil
}

// Decline turns down the pending offer at no cost.
func (j *Journey) Decline() (string, error) {
	s := &j.State
	if s.Phase != PhaseAwaitingMiniGame || s.Pending == nil {
		return "", ErrNoMiniGame
	}
	kind := s.Pending.Kind
	s.Pending = nil
	s.Phase = PhaseInTransit
	return fmt.Sprintf("You decide not to %s and press on.\n", kind), nil
}

// Submit records a finished run on the board and resets for the next one.
func (j *Journey) Submit(name string, board *Leaderboard) (LeaderboardEntry, error) {
	if !j.State.Terminal() {
		return LeaderboardEntry{}, ErrNotFinished
	}
	entry, err := board.Add(name, j.State.Day)
	if err != nil {
		return LeaderboardEntry{}, err
	}
	j.Reset()
	return entry, nil
}

// Reset discards the run, including anything a mini-game put in the wagon.
func (j *Journey) Reset() {
	j.State = NewJourneyState(j.Catalog)
}

// Headline is the terminal banner for the current phase.
func (j *Journey) Headline() string {
	switch j.State.Phase {
	case PhaseCompleted:
		return "You Made It to Oregon!"
	case PhaseFailed:
		return fmt.Sprintf("Your party perished on day %d near %s.", j.State.Day, LandmarkName(j.Catalog.Landmarks, j.State.LandmarkIndex))
	}
	return ""
}

// AdvanceLabel is the caption for the single day/rest control.
func (j *Journey) AdvanceLabel() string {
	if j.State.Resting {
		return "Rest (Recover HP & Water)"
	}
	return "Next Day"
}
