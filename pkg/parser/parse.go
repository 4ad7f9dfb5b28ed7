package parser

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"meeker-trail/pkg/game"
	"meeker-trail/pkg/network"
)

const (
	VerbPick    = "pick"
	VerbBuy     = "buy"
	VerbStart   = "start"
	VerbNext    = "next"
	VerbRest    = "rest"
	VerbPlay    = "play"
	VerbDecline = "decline"
	VerbSubmit  = "submit"
	VerbReset   = "reset"
	VerbStatus  = "status"
	VerbBoard   = "board"
	VerbHelp    = "help"
	VerbQuit    = "quit"
)

// minConfidence is the lowest verb score accepted.
const minConfidence = 0.5

var (
	ErrEmptyInput      = errors.New("enter a command")
	ErrUnknownCommand  = errors.New("unknown command")
	ErrMissingArgument = errors.New("missing argument")
	ErrUnknownArgument = errors.New("unrecognised argument")
)

// Intent is a parsed line. Local intents (help, quit) never reach the
// server; everything else carries the action to send.
type Intent struct {
	Raw        string
	Verb       string
	Action     network.ActionPayload
	Local      bool
	Confidence float64
}

// Context is what the client knows about the run when a line is typed.
type Context struct {
	AwaitingMiniGame bool
}

type Parser struct {
	registry   *Registry
	characters []string
	supplies   []game.Supply
}

func New(cat game.Catalog) *Parser {
	p := &Parser{registry: DefaultRegistry()}
	for _, c := range cat.Characters {
		p.characters = append(p.characters, c.Name)
	}
	p.supplies = append(p.supplies, cat.Supplies...)
	return p
}

func (p *Parser) Parse(ctx Context, raw string) (Intent, error) {
	intent := Intent{Raw: raw}
	normalised := normaliseInput(raw)
	tokens := tokenise(normalised)

	if len(tokens) == 0 {
		if ctx.AwaitingMiniGame {
			return p.answer(intent, raw), nil
		}
		return intent, ErrEmptyInput
	}

	best, ok := p.registry.match(tokens)
	if ctx.AwaitingMiniGame {
		// Anything that is not clearly an in-game verb is an answer. Single
		// letter aliases are answers too.
		def, _ := p.registry.command(best.Canonical)
		if !ok || best.Score < 0.97 || !def.Answer || utf8.RuneCountInString(best.Alias) < 2 {
			return p.answer(intent, raw), nil
		}
	}
	if !ok || best.Score < minConfidence {
		return intent, fmt.Errorf("%w: %q", ErrUnknownCommand, strings.TrimSpace(raw))
	}

	def, _ := p.registry.command(best.Canonical)
	intent.Verb = def.Canonical
	intent.Confidence = best.Score
	args := tokens[best.Consumed:]
	if len(args) < def.MinArgs {
		return intent, fmt.Errorf("%w: %s needs %d", ErrMissingArgument, def.Canonical, def.MinArgs)
	}

	switch intent.Verb {
	case VerbPick:
		name, ok := p.resolveCharacter(args)
		if !ok {
			return intent, fmt.Errorf("%w: no pioneer named %q", ErrUnknownArgument, strings.Join(args, " "))
		}
		intent.Action = network.ActionPayload{Action: network.ActSelect, Value: name}
	case VerbBuy:
		rest, count := splitCount(args)
		id, ok := p.resolveSupply(rest)
		if !ok {
			return intent, fmt.Errorf("%w: no supply called %q", ErrUnknownArgument, strings.Join(rest, " "))
		}
		if count == 0 {
			count = 1
		}
		intent.Action = network.ActionPayload{Action: network.ActBuy, Value: id, Count: count}
	case VerbStart:
		intent.Action = network.ActionPayload{Action: network.ActStart}
	case VerbNext, VerbRest:
		intent.Action = network.ActionPayload{Action: network.ActAdvance}
	case VerbPlay:
		intent.Action = network.ActionPayload{Action: network.ActPlay, Value: rawTail(raw, best.Consumed)}
	case VerbDecline:
		intent.Action = network.ActionPayload{Action: network.ActDecline}
	case VerbSubmit:
		intent.Action = network.ActionPayload{Action: network.ActSubmit, Value: rawTail(raw, best.Consumed)}
	case VerbReset:
		intent.Action = network.ActionPayload{Action: network.ActReset}
	case VerbStatus:
		intent.Action = network.ActionPayload{Action: network.ActState}
	case VerbBoard:
		intent.Action = network.ActionPayload{Action: network.ActLeaderboard}
	case VerbHelp, VerbQuit:
		intent.Local = true
	}
	return intent, nil
}

func (p *Parser) answer(intent Intent, raw string) Intent {
	intent.Verb = VerbPlay
	intent.Confidence = 1
	intent.Action = network.ActionPayload{Action: network.ActPlay, Value: strings.TrimSpace(raw)}
	return intent
}

// rawTail drops the first n words of raw, keeping the rest verbatim so
// names keep their case.
func rawTail(raw string, n int) string {
	fields := strings.Fields(raw)
	if n >= len(fields) {
		return ""
	}
	return strings.Join(fields[n:], " ")
}

// resolveCharacter matches a full name, a first or last name, or a close
// misspelling of any of them.
func (p *Parser) resolveCharacter(args []string) (string, bool) {
	in := strings.Join(args, " ")
	keys := make(map[string][]string, len(p.characters))
	for _, name := range p.characters {
		n := normaliseInput(name)
		keys[n] = append(keys[n], name)
		for _, part := range tokenise(n) {
			keys[part] = append(keys[part], name)
		}
	}
	return resolve(in, keys)
}

func (p *Parser) resolveSupply(args []string) (string, bool) {
	in := strings.Join(args, " ")
	keys := make(map[string][]string, len(p.supplies)*2)
	for _, s := range p.supplies {
		keys[normaliseInput(s.ID)] = append(keys[normaliseInput(s.ID)], s.ID)
		if n := normaliseInput(s.Name); n != normaliseInput(s.ID) {
			keys[n] = append(keys[n], s.ID)
		}
	}
	return resolve(in, keys)
}

// resolve picks the single value whose key matches in exactly, by prefix or
// within the Levenshtein limit, in that order of preference.
func resolve(in string, keys map[string][]string) (string, bool) {
	if in == "" {
		return "", false
	}
	if vals := unique(keys[in]); len(vals) == 1 {
		return vals[0], true
	}

	var prefixed []string
	for key, vals := range keys {
		if len(in) >= 2 && strings.HasPrefix(key, in) {
			prefixed = append(prefixed, vals...)
		}
	}
	if vals := unique(prefixed); len(vals) == 1 {
		return vals[0], true
	}

	bestDist := -1
	var best []string
	for key, vals := range keys {
		if len(in) < 3 {
			break
		}
		dist := levenshtein.ComputeDistance(in, key)
		if dist > levenshteinLimit(len(key)) {
			continue
		}
		switch {
		case bestDist < 0 || dist < bestDist:
			bestDist = dist
			best = append([]string(nil), vals...)
		case dist == bestDist:
			best = append(best, vals...)
		}
	}
	if vals := unique(best); len(vals) == 1 {
		return vals[0], true
	}
	return "", false
}

func unique(vals []string) []string {
	seen := make(map[string]bool, len(vals))
	out := vals[:0:0]
	for _, v := range vals {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

// Help lists the commands for the terminal client.
func Help() string {
	return strings.Join([]string{
		"pick <character>     choose your pioneer",
		"buy <supply> [n]     buy supplies before leaving",
		"start                set out on the trail",
		"next | rest          advance a day or rest at camp",
		"play <answer>        answer the current mini-game",
		"decline              turn down a mini-game",
		"submit <name>        record a finished run",
		"reset                start over",
		"status | board       show the wagon or the leaderboard",
		"quit                 leave",
	}, "\n")
}
