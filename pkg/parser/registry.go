package parser

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

type CommandDef struct {
	Canonical string
	Aliases   []string
	MinArgs   int
	// Answer marks verbs that stay available while a mini-game waits.
	Answer bool
}

type commandPhrase struct {
	canonical string
	alias     string
	tokens    []string
}

type Registry struct {
	commands map[string]CommandDef
	phrases  []commandPhrase
}

func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]CommandDef),
	}
}

func (r *Registry) RegisterCommand(c CommandDef) {
	c.Canonical = normaliseInput(c.Canonical)
	if c.Canonical == "" {
		return
	}
	r.commands[c.Canonical] = c

	r.phrases = append(r.phrases, commandPhrase{
		canonical: c.Canonical,
		alias:     c.Canonical,
		tokens:    tokenise(c.Canonical),
	})
	for _, a := range c.Aliases {
		n := normaliseInput(a)
		if n == "" {
			continue
		}
		r.phrases = append(r.phrases, commandPhrase{
			canonical: c.Canonical,
			alias:     n,
			tokens:    tokenise(n),
		})
	}
}

func (r *Registry) command(canonical string) (CommandDef, bool) {
	cmd, ok := r.commands[canonical]
	return cmd, ok
}

type candidate struct {
	Canonical string
	Alias     string
	Consumed  int
	Score     float64
}

// match scores every phrase against the leading tokens: exact 1.0, alias
// 0.97, prefix 0.9, and a Levenshtein score below that.
func (r *Registry) match(tokens []string) (candidate, bool) {
	if len(tokens) == 0 {
		return candidate{}, false
	}
	cands := make([]candidate, 0, len(r.phrases))
	for _, phrase := range r.phrases {
		n := len(phrase.tokens)
		if n == 0 || n > len(tokens) {
			continue
		}
		prefix := strings.Join(tokens[:n], " ")

		if prefix == phrase.alias {
			score := 1.0
			if phrase.alias != phrase.canonical {
				score = 0.97
			}
			cands = append(cands, candidate{Canonical: phrase.canonical, Alias: phrase.alias, Consumed: n, Score: score})
			continue
		}

		if n == 1 && len(tokens[0]) >= 2 && strings.HasPrefix(phrase.alias, tokens[0]) {
			cands = append(cands, candidate{Canonical: phrase.canonical, Consumed: 1, Score: 0.9})
			continue
		}

		if len(prefix) < 3 {
			continue
		}
		dist := levenshtein.ComputeDistance(prefix, phrase.alias)
		if dist > levenshteinLimit(len(phrase.alias)) {
			continue
		}
		cands = append(cands, candidate{
			Canonical: phrase.canonical,
			Consumed:  n,
			Score:     0.72 - 0.08*float64(dist),
		})
	}
	if len(cands) == 0 {
		return candidate{}, false
	}

	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Score == cands[j].Score {
			if cands[i].Consumed == cands[j].Consumed {
				return cands[i].Canonical < cands[j].Canonical
			}
			return cands[i].Consumed > cands[j].Consumed
		}
		return cands[i].Score > cands[j].Score
	})
	return cands[0], true
}

func DefaultRegistry() *Registry {
	r := NewRegistry()
	commands := []CommandDef{
		{Canonical: VerbPick, Aliases: []string{"select", "choose", "character", "be"}, MinArgs: 1},
		{Canonical: VerbBuy, Aliases: []string{"purchase", "shop"}, MinArgs: 1},
		{Canonical: VerbStart, Aliases: []string{"depart", "set out", "head out"}},
		{Canonical: VerbNext, Aliases: []string{"continue", "travel", "next day", "go"}},
		{Canonical: VerbRest, Aliases: []string{"camp", "recover"}},
		{Canonical: VerbPlay, Aliases: []string{"answer", "guess", "shoot", "bait"}, MinArgs: 1, Answer: true},
		{Canonical: VerbDecline, Aliases: []string{"skip", "pass", "no thanks"}, Answer: true},
		{Canonical: VerbSubmit, Aliases: []string{"sign", "record"}, MinArgs: 1},
		{Canonical: VerbReset, Aliases: []string{"restart", "new game"}},
		{Canonical: VerbStatus, Aliases: []string{"state", "stats", "look"}, Answer: true},
		{Canonical: VerbBoard, Aliases: []string{"leaderboard", "scores"}, Answer: true},
		{Canonical: VerbHelp, Aliases: []string{"h", "commands"}, Answer: true},
		{Canonical: VerbQuit, Aliases: []string{"exit", "q", "bye"}, Answer: true},
	}
	for _, cmd := range commands {
		r.RegisterCommand(cmd)
	}
	return r
}
