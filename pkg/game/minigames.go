package game

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// MiniGameKind names one of the three challenges.
type MiniGameKind string

const (
	KindGuess MiniGameKind = "count stars"
	KindHunt  MiniGameKind = "hunt"
	KindFish  MiniGameKind = "fish"
)

// MiniGameKinds is the scheduler's uniform pick list.
var MiniGameKinds = []MiniGameKind{KindFish, KindHunt, KindGuess}

const (
	GuessMax         = 20
	HuntSlots        = 5
	HuntHitThreshold = 3
	FishMax          = 10
	BaitMax          = 5
	BaitFoodCost     = 10
	FoodPerFish      = 5
	CatchChance      = 0.70
)

var (
	guessReward = Reward{FoodEarned: 10, HealthEarned: 5}
	huntReward  = Reward{FoodEarned: 20, HealthEarned: 10, FoodUnits: 1}
)

// Reward is what a resolved mini-game hands back to the journey.
type Reward struct {
	FoodEarned   int `json:"food_earned"`
	HealthEarned int `json:"health_earned"`
	// FoodUnits are whole food supply units stored in the wagon.
	FoodUnits int `json:"food_units,omitempty"`
}

func (r Reward) Zero() bool {
	return r.FoodEarned == 0 && r.HealthEarned == 0 && r.FoodUnits == 0
}

// MiniGame is an offered challenge with its dice already rolled.
type MiniGame struct {
	Kind      MiniGameKind
	Day       int
	Secret    int
	Targets   [HuntSlots]bool
	FishCount int
}

// Prompt is the question shown to the player.
func (m *MiniGame) Prompt() string {
	switch m.Kind {
	case KindGuess:
		return fmt.Sprintf("Guess the number of dots (1-%d):", GuessMax)
	case KindHunt:
		return fmt.Sprintf("Hit %d targets (Y/N for each, e.g., YYNYN):", HuntSlots)
	case KindFish:
		return fmt.Sprintf("Use bait (1-%d units of food)?", BaitMax)
	}
	return ""
}

// Offer returns the confirmation question for a pending mini-game.
func (m *MiniGame) Offer() string {
	return fmt.Sprintf("Day %d: Want to %s?", m.Day, m.Kind)
}

// RollMiniGame prepares a challenge. Hunting is refused on day 1 before any
// dice are thrown.
func RollMiniGame(kind MiniGameKind, day int, rng *rand.Rand) (*MiniGame, error) {
	m := &MiniGame{Kind: kind, Day: day}
	switch kind {
	case KindGuess:
		m.Secret = rng.Intn(GuessMax) + 1
	case KindHunt:
		if day <= 1 {
			return nil, ErrHuntDayOne
		}
		for i := range m.Targets {
			m.Targets[i] = rng.Float64() < 0.5
		}
	case KindFish:
		m.FishCount = rng.Intn(FishMax) + 1
	default:
		return nil, fmt.Errorf("unknown mini-game %q", kind)
	}
	return m, nil
}

// Outcome describes how a mini-game played out.
type Outcome struct {
	Kind     MiniGameKind `json:"kind"`
	Reward   Reward       `json:"reward"`
	Score    int          `json:"score,omitempty"`
	BaitUsed int          `json:"bait_used,omitempty"`
	Caught   bool         `json:"caught,omitempty"`
	Message  string       `json:"message"`
}

// ResolveGuess pays out only on an exact match.
func ResolveGuess(secret int, input string) Outcome {
	guess := parseLeadingInt(input)
	if guess == secret {
		return Outcome{Kind: KindGuess, Reward: guessReward, Message: "Correct! +10 Food, +5 HP"}
	}
	return Outcome{Kind: KindGuess, Message: fmt.Sprintf("Wrong! The number was %d.", secret)}
}

// HuntScore counts positions where the player fired and a target was present.
// Positions are characters, not bytes.
func HuntScore(targets [HuntSlots]bool, input string) int {
	hits := []rune(strings.ToLower(strings.TrimSpace(input)))
	score := 0
	for i, h := range hits {
		if i >= HuntSlots {
			break
		}
		if h == 'y' && targets[i] {
			score++
		}
	}
	return score
}

// ResolveHunt scores a hunt. On day 1 it returns ErrHuntDayOne and an empty outcome.
func ResolveHunt(day int, targets [HuntSlots]bool, input string) (Outcome, error) {
	if day <= 1 {
		return Outcome{Kind: KindHunt, Message: "Can't hunt on Day 1!"}, ErrHuntDayOne
	}
	score := HuntScore(targets, input)
	if score >= HuntHitThreshold {
		return Outcome{
			Kind:    KindHunt,
			Reward:  huntReward,
			Score:   score,
			Message: fmt.Sprintf("Success! Hit %d/%d targets. +20 Food, +10 HP", score, HuntSlots),
		}, nil
	}
	return Outcome{Kind: KindHunt, Score: score, Message: fmt.Sprintf("Missed! Hit %d/%d targets.", score, HuntSlots)}, nil
}

// ParseBait reads a bait commitment, clamped to 0..BaitMax.
func ParseBait(input string) int {
	return clamp(parseLeadingInt(input), 0, BaitMax)
}

// ResolveFishing settles a fishing trip. The bait cost is not part of the
// reward; callers charge it with ApplyBaitCost whether or not anything bites.
func ResolveFishing(fishCount, bait int, caught bool) Outcome {
	bait = clamp(bait, 0, BaitMax)
	if bait == 0 {
		return Outcome{Kind: KindFish, Message: "No bait used, no fish caught."}
	}
	if caught {
		return Outcome{
			Kind:     KindFish,
			Reward:   Reward{FoodEarned: fishCount * FoodPerFish, FoodUnits: 1},
			BaitUsed: bait,
			Caught:   true,
			Message:  fmt.Sprintf("Caught %d fish! +%d Food", fishCount, fishCount*FoodPerFish),
		}
	}
	return Outcome{Kind: KindFish, BaitUsed: bait, Message: "Failed to catch fish, lost bait!"}
}

// parseLeadingInt mimics a lenient integer read: leading digits count,
// anything unreadable is 0.
func parseLeadingInt(input string) int {
	s := strings.TrimSpace(input)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}
