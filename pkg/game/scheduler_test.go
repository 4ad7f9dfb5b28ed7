package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func transitState(day int) *JourneyState {
	return &JourneyState{Day: day, Phase: PhaseInTransit, Health: 100, Food: 100, Water: 100}
}

func TestSchedulerFiresAboutThirtyPercent(t *testing.T) {
	sched := NewEventScheduler(DefaultRules())
	rng := rand.New(rand.NewSource(42))

	const trials = 20000
	fired := 0
	kinds := map[MiniGameKind]int{}
	for i := 0; i < trials; i++ {
		if kind, ok := sched.Roll(transitState(2+i%100), rng); ok {
			fired++
			kinds[kind]++
		}
	}
	rate := float64(fired) / trials
	assert.InDelta(t, 0.30, rate, 0.02)
	assert.Len(t, kinds, 3)
	for kind, n := range kinds {
		assert.InDelta(t, 1.0/3, float64(n)/float64(fired), 0.04, "kind %s", kind)
	}
}

func TestSchedulerSkipsRestingAndTerminal(t *testing.T) {
	sched := EventScheduler{Chance: 1}
	rng := rand.New(rand.NewSource(1))

	resting := transitState(30)
	resting.Resting = true
	resting.Phase = PhaseResting
	_, ok := sched.Roll(resting, rng)
	assert.False(t, ok)

	for _, p := range []Phase{PhaseFailed, PhaseCompleted, PhaseProvisioning, PhaseAwaitingMiniGame} {
		s := transitState(8)
		s.Phase = p
		_, ok := sched.Roll(s, rng)
		assert.False(t, ok, "phase %s", p)
	}

	_, ok = sched.Roll(transitState(8), rng)
	assert.True(t, ok)
}

func TestSchedulerEveryNthDayGate(t *testing.T) {
	sched := EventScheduler{Chance: 1, Every: 3}
	rng := rand.New(rand.NewSource(1))
	for day := 2; day <= 30; day++ {
		_, ok := sched.Roll(transitState(day), rng)
		assert.Equal(t, day%3 == 0, ok, "day %d", day)
	}
}

func TestLandmarkIndex(t *testing.T) {
	count := len(DefaultCatalog().Landmarks)
	assert.Equal(t, 17, count)

	tests := []struct {
		day  int
		want int
	}{
		{day: 1, want: 0},
		{day: 8, want: 0},
		{day: 9, want: 1},
		{day: 72, want: 8},
		{day: 144, want: 16},
		{day: 145, want: 16},
		{day: 400, want: 16},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, LandmarkIndex(tc.day, 145, count), "day %d", tc.day)
	}
	assert.Equal(t, 0, LandmarkIndex(5, 145, 0))
	assert.Equal(t, "journey end", LandmarkName(nil, 0))
	assert.Equal(t, "Fort Kearny", LandmarkName(DefaultCatalog().Landmarks, 2))
}
