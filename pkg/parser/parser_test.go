package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeker-trail/pkg/game"
	"meeker-trail/pkg/network"
)

func newParser() *Parser {
	return New(game.DefaultCatalog())
}

func TestNormalisationTable(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "  BUY  ", want: "buy"},
		{in: "pick   Ezra-Meeker!!", want: "pick ezra meeker"},
		{in: "buy\tfood 3", want: "buy food 3"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, normaliseInput(tc.in), "input %q", tc.in)
	}
}

func TestParseActions(t *testing.T) {
	p := newParser()
	tests := []struct {
		in   string
		want network.ActionPayload
	}{
		{in: "pick Ezra Meeker", want: network.ActionPayload{Action: network.ActSelect, Value: "Ezra Meeker"}},
		{in: "choose maria", want: network.ActionPayload{Action: network.ActSelect, Value: "Maria Lopez"}},
		{in: "pick smith", want: network.ActionPayload{Action: network.ActSelect, Value: "John Smith"}},
		{in: "pick ezr meeker", want: network.ActionPayload{Action: network.ActSelect, Value: "Ezra Meeker"}},
		{in: "buy food", want: network.ActionPayload{Action: network.ActBuy, Value: "food", Count: 1}},
		{in: "buy 3 water", want: network.ActionPayload{Action: network.ActBuy, Value: "water", Count: 3}},
		{in: "buy fod 2", want: network.ActionPayload{Action: network.ActBuy, Value: "food", Count: 2}},
		{in: "purchase tool", want: network.ActionPayload{Action: network.ActBuy, Value: "tools", Count: 1}},
		{in: "start", want: network.ActionPayload{Action: network.ActStart}},
		{in: "set out", want: network.ActionPayload{Action: network.ActStart}},
		{in: "next", want: network.ActionPayload{Action: network.ActAdvance}},
		{in: "rest", want: network.ActionPayload{Action: network.ActAdvance}},
		{in: "submt Abby Sage", want: network.ActionPayload{Action: network.ActSubmit, Value: "Abby Sage"}},
		{in: "reset", want: network.ActionPayload{Action: network.ActReset}},
		{in: "status", want: network.ActionPayload{Action: network.ActState}},
		{in: "leaderboard", want: network.ActionPayload{Action: network.ActLeaderboard}},
		{in: "declne", want: network.ActionPayload{Action: network.ActDecline}},
	}
	for _, tc := range tests {
		intent, err := p.Parse(Context{}, tc.in)
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, intent.Action, "input %q", tc.in)
		assert.False(t, intent.Local)
	}
}

func TestParseLocalVerbs(t *testing.T) {
	p := newParser()
	for _, in := range []string{"help", "quit", "q", "exit"} {
		intent, err := p.Parse(Context{}, in)
		require.NoError(t, err)
		assert.True(t, intent.Local, "input %q", in)
	}
}

func TestParseErrors(t *testing.T) {
	p := newParser()

	_, err := p.Parse(Context{}, "   ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = p.Parse(Context{}, "dance wildly")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	_, err = p.Parse(Context{}, "buy")
	assert.ErrorIs(t, err, ErrMissingArgument)

	_, err = p.Parse(Context{}, "buy oxen")
	assert.ErrorIs(t, err, ErrUnknownArgument)

	_, err = p.Parse(Context{}, "pick nobody")
	assert.ErrorIs(t, err, ErrUnknownArgument)
}

func TestAwaitingMiniGameTreatsLinesAsAnswers(t *testing.T) {
	p := newParser()
	ctx := Context{AwaitingMiniGame: true}

	for _, in := range []string{"7", "yynny", "", "three"} {
		intent, err := p.Parse(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, network.ActPlay, intent.Action.Action, "input %q", in)
	}

	intent, err := p.Parse(ctx, " 12 ")
	require.NoError(t, err)
	assert.Equal(t, "12", intent.Action.Value)

	intent, err = p.Parse(ctx, "play YYNNY")
	require.NoError(t, err)
	assert.Equal(t, network.ActionPayload{Action: network.ActPlay, Value: "YYNNY"}, intent.Action)

	intent, err = p.Parse(ctx, "decline")
	require.NoError(t, err)
	assert.Equal(t, network.ActDecline, intent.Action.Action)

	intent, err = p.Parse(ctx, "quit")
	require.NoError(t, err)
	assert.True(t, intent.Local)

	intent, err = p.Parse(ctx, "next")
	require.NoError(t, err)
	assert.Equal(t, network.ActPlay, intent.Action.Action, "travel verbs are answers while a mini-game waits")
}

func TestSingleLetterAliasesAreAnswersWhileAwaiting(t *testing.T) {
	p := newParser()

	for _, in := range []string{"q", "h"} {
		intent, err := p.Parse(Context{AwaitingMiniGame: true}, in)
		require.NoError(t, err)
		assert.False(t, intent.Local, "input %q", in)
		assert.Equal(t, network.ActionPayload{Action: network.ActPlay, Value: in}, intent.Action)

		intent, err = p.Parse(Context{}, in)
		require.NoError(t, err)
		assert.True(t, intent.Local, "input %q", in)
	}
}
