package game

import (
	"strings"
	"sync"
)

// MaxNameLength caps leaderboard names.
const MaxNameLength = 20

type LeaderboardEntry struct {
	Name string `json:"name"`
	Days int    `json:"days"`
}

// Leaderboard is an append-only, insertion-ordered record of finished runs.
type Leaderboard struct {
	entries []LeaderboardEntry
	mu      sync.RWMutex
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{
		entries: make([]LeaderboardEntry, 0),
	}
}

// Add appends an entry. Empty names are rejected and leave the board untouched.
func (lb *Leaderboard) Add(name string, days int) (LeaderboardEntry, error) {
	name, err := NormalizeName(name)
	if err != nil {
		return LeaderboardEntry{}, err
	}
	entry := LeaderboardEntry{Name: name, Days: days}

	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.entries = append(lb.entries, entry)
	return entry, nil
}

// Entries returns a copy in insertion order.
func (lb *Leaderboard) Entries() []LeaderboardEntry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	result := make([]LeaderboardEntry, len(lb.entries))
	copy(result, lb.entries)
	return result
}

func (lb *Leaderboard) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return len(lb.entries)
}

// NormalizeName trims a player name, caps its length and strips control
// characters.
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	name = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}
