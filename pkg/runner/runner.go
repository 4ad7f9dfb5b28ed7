package runner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"meeker-trail/pkg/game"
	"meeker-trail/pkg/network"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrStopped       = errors.New("runner stopped")
)

// Runner owns one journey and its leaderboard. Every mutation, timer tick
// included, happens on the Run goroutine.
type Runner struct {
	Inbox chan any
	ID    string

	journey *game.Journey
	board   *game.Leaderboard
	clients map[string]Conn
	nextID  int
	runID   string
	ticker  *time.Ticker

	quit     chan struct{}
	stopOnce sync.Once
}

func New(id string, j *game.Journey, board *game.Leaderboard) *Runner {
	if board == nil {
		board = game.NewLeaderboard()
	}
	return &Runner{
		Inbox:   make(chan any, 64),
		ID:      id,
		journey: j,
		board:   board,
		clients: make(map[string]Conn),
		nextID:  1,
		quit:    make(chan struct{}),
	}
}

// Board is safe to read from any goroutine.
func (r *Runner) Board() *game.Leaderboard {
	return r.board
}

func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.quit) })
}

func (r *Runner) Run(ctx context.Context) {
	r.ticker = time.NewTicker(r.journey.Rules.TickPeriod)
	defer r.ticker.Stop()
	defer r.closeClients()

	for {
		select {
		case <-ctx.Done():
			return
		case <-r.quit:
			return
		case cmd := <-r.Inbox:
			r.handleCommand(cmd)
		case <-r.ticker.C:
			r.tick()
		}
	}
}

// Do submits an action and waits for its result.
func (r *Runner) Do(ctx context.Context, a network.ActionPayload) (Result, error) {
	reply := make(chan Result, 1)
	if err := r.Send(ctx, Action{Action: a, Reply: reply}); err != nil {
		return Result{}, err
	}
	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	case <-r.quit:
		return Result{}, ErrStopped
	}
}

// Snapshot returns the current state of the run.
func (r *Runner) Snapshot(ctx context.Context) (game.Snapshot, error) {
	reply := make(chan game.Snapshot, 1)
	if err := r.Send(ctx, Query{Reply: reply}); err != nil {
		return game.Snapshot{}, err
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-ctx.Done():
		return game.Snapshot{}, ctx.Err()
	case <-r.quit:
		return game.Snapshot{}, ErrStopped
	}
}

// Send queues a command without waiting for it to be handled.
func (r *Runner) Send(ctx context.Context, cmd any) error {
	select {
	case r.Inbox <- cmd:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.quit:
		return ErrStopped
	}
}

func (r *Runner) handleCommand(cmd any) {
	switch c := cmd.(type) {
	case Attach:
		id := fmt.Sprintf("c%d", r.nextID)
		r.nextID++
		r.clients[id] = c.Conn
		if c.Reply != nil {
			c.Reply <- id
		}
		r.sendTo(id, network.MsgState, r.journey.Snapshot())
		r.sendTo(id, network.MsgLeaderboard, network.LeaderboardPayload{Entries: r.board.Entries()})
	case Detach:
		delete(r.clients, c.ConnID)
	case Query:
		c.Reply <- r.journey.Snapshot()
	case Action:
		res := r.apply(c.Action)
		if c.Reply != nil {
			c.Reply <- res
		}
	case ConnAction:
		res := r.apply(c.Action)
		r.notify(c.ConnID, c.Action, res)
	}
}

func (r *Runner) apply(a network.ActionPayload) Result {
	j := r.journey
	before := j.State.Phase
	var res Result

	switch a.Action {
	case network.ActSelect:
		res.Text, res.Err = j.SelectCharacter(a.Value)
	case network.ActBuy:
		res.Text, res.Err = r.buy(a.Value, a.Count)
	case network.ActStart:
		res.Text, res.Err = j.Start()
		if res.Err == nil {
			r.runID = uuid.NewString()
			r.restartClock()
			log.Printf("[%s] Run %s started with %s", r.ID, r.runID, j.State.Character.Name)
		}
	case network.ActAdvance:
		res.Text, res.Err = j.Advance()
		if res.Err == nil {
			r.restartClock()
		}
	case network.ActPlay:
		out, err := j.Play(a.Value)
		if !errors.Is(err, game.ErrNoMiniGame) {
			res.Outcome = &out
			res.Text = out.Message + "\n"
		}
		res.Err = err
	case network.ActDecline:
		res.Text, res.Err = j.Decline()
	case network.ActSubmit:
		entry, err := j.Submit(a.Value, r.board)
		if err == nil {
			res.Entry = &entry
			res.Text = fmt.Sprintf("%s added to the leaderboard with %d days.\n", entry.Name, entry.Days)
			log.Printf("[%s] Leaderboard entry %q (%d days)", r.ID, entry.Name, entry.Days)
			r.runID = ""
			r.restartClock()
		}
		res.Err = err
	case network.ActReset:
		j.Reset()
		res.Text = "The wagon is unloaded. Choose a new pioneer.\n"
		log.Printf("[%s] Run reset", r.ID)
		r.runID = ""
		r.restartClock()
	case network.ActState, network.ActLeaderboard:
	default:
		res.Err = fmt.Errorf("%w: %q", ErrUnknownAction, a.Action)
	}

	if res.Err != nil {
		log.Printf("[%s] Rejected %s: %v", r.ID, a.Action, res.Err)
	}
	r.logTransition(before)
	res.Snapshot = j.Snapshot()
	return res
}

// buy purchases count units one at a time, stopping at the first failure.
func (r *Runner) buy(id string, count int) (string, error) {
	if count < 1 {
		count = 1
	}
	result := &strings.Builder{}
	for i := 0; i < count; i++ {
		text, err := r.journey.Buy(id)
		if err != nil {
			return result.String(), err
		}
		result.WriteString(text)
	}
	return result.String(), nil
}

func (r *Runner) tick() {
	before := r.journey.State.Phase
	text, ok := r.journey.Tick()
	if !ok {
		return
	}
	r.logTransition(before)
	r.broadcast(network.MsgTick, network.TickPayload{Text: text, State: r.journey.Snapshot()})
}

// restartClock gives the player a full period after a manual step.
func (r *Runner) restartClock() {
	if r.ticker == nil {
		return
	}
	r.ticker.Reset(r.journey.Rules.TickPeriod)
	select {
	case <-r.ticker.C:
	default:
	}
}

func (r *Runner) logTransition(before game.Phase) {
	after := r.journey.State.Phase
	if after == before {
		return
	}
	switch after {
	case game.PhaseCompleted:
		log.Printf("[%s] Run %s completed on day %d", r.ID, r.runID, r.journey.State.Day)
	case game.PhaseFailed:
		log.Printf("[%s] Run %s failed on day %d", r.ID, r.runID, r.journey.State.Day)
	}
}

func (r *Runner) notify(connID string, a network.ActionPayload, res Result) {
	if res.Err != nil {
		r.sendTo(connID, network.MsgError, network.ErrorPayload{Action: a.Action, Error: res.Err.Error()})
	}
	if res.Outcome != nil {
		r.sendTo(connID, network.MsgOutcome, res.Outcome)
	}
	if res.Text != "" {
		r.sendTo(connID, network.MsgResult, network.ResultPayload{Action: a.Action, Text: res.Text})
	}

	switch {
	case a.Action == network.ActLeaderboard:
		r.sendTo(connID, network.MsgLeaderboard, network.LeaderboardPayload{Entries: r.board.Entries()})
	case a.Action == network.ActState:
		r.sendTo(connID, network.MsgState, res.Snapshot)
	case res.Entry != nil:
		r.broadcast(network.MsgLeaderboard, network.LeaderboardPayload{Entries: r.board.Entries()})
		r.broadcast(network.MsgState, res.Snapshot)
	default:
		r.broadcast(network.MsgState, res.Snapshot)
	}
}

func (r *Runner) sendTo(connID string, t network.MessageType, payload any) {
	c, ok := r.clients[connID]
	if !ok {
		return
	}
	b, err := network.Encode(t, payload)
	if err != nil {
		log.Printf("[%s] Encode %s: %v", r.ID, t, err)
		return
	}
	if err := c.Send(b); err != nil {
		r.dropClient(connID)
	}
}

func (r *Runner) broadcast(t network.MessageType, payload any) {
	b, err := network.Encode(t, payload)
	if err != nil {
		log.Printf("[%s] Encode %s: %v", r.ID, t, err)
		return
	}
	var failed []string
	for id, c := range r.clients {
		if err := c.Send(b); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.dropClient(id)
	}
}

func (r *Runner) dropClient(id string) {
	if c, ok := r.clients[id]; ok {
		_ = c.Close()
	}
	delete(r.clients, id)
}

func (r *Runner) closeClients() {
	for id := range r.clients {
		r.dropClient(id)
	}
}
