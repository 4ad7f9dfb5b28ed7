package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"meeker-trail/pkg/game"
	"meeker-trail/pkg/network"
	"meeker-trail/pkg/parser"
)

type Client struct {
	conn   *network.Client
	parser *parser.Parser
	out    io.Writer

	mu       sync.Mutex
	state    game.Snapshot
	awaiting bool
}

func NewClient(conn *network.Client, cat game.Catalog, out io.Writer) *Client {
	return &Client{
		conn:   conn,
		parser: parser.New(cat),
		out:    out,
	}
}

// fetchCatalog asks the server for its catalog so fuzzy matching knows the
// configured characters and supplies.
func fetchCatalog(addr string) game.Catalog {
	httpClient := &http.Client{Timeout: 5 * time.Second}
	resp, err := httpClient.Get("http://" + addr + "/api/catalog")
	if err != nil {
		log.Printf("Using built-in catalog: %v", err)
		return game.DefaultCatalog()
	}
	defer resp.Body.Close()

	var cat game.Catalog
	if err := json.NewDecoder(resp.Body).Decode(&cat); err != nil {
		log.Printf("Using built-in catalog: %v", err)
		return game.DefaultCatalog()
	}
	return cat
}

func (c *Client) Run(in io.Reader) error {
	fmt.Fprintln(c.out, "Connected to the Meeker Trail server! Type 'help' for commands.")
	go c.readFromServer()

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if quit := c.handleLine(scanner.Text()); quit {
			return nil
		}
	}
}

// handleLine parses one line and sends it. It reports whether to quit.
func (c *Client) handleLine(line string) bool {
	c.mu.Lock()
	ctx := parser.Context{AwaitingMiniGame: c.awaiting}
	c.mu.Unlock()

	intent, err := c.parser.Parse(ctx, line)
	if err != nil {
		fmt.Fprintln(c.out, err)
		return false
	}
	if intent.Local {
		switch intent.Verb {
		case parser.VerbQuit:
			fmt.Fprintln(c.out, "Farewell, pioneer.")
			return true
		default:
			fmt.Fprintln(c.out, parser.Help())
		}
		return false
	}
	if err := c.conn.Send(intent.Action); err != nil {
		fmt.Fprintln(c.out, err)
		return true
	}
	return false
}

func (c *Client) readFromServer() {
	for msg := range c.conn.Input {
		c.handleMessage(msg)
	}
	fmt.Fprintln(c.out, "\nDisconnected from server.")
	os.Exit(0)
}

func (c *Client) handleMessage(msg network.Message) {
	switch msg.Type {
	case network.MsgState:
		snap, err := network.DecodePayload[game.Snapshot](msg)
		if err != nil {
			return
		}
		c.setState(snap)
		c.printState(snap)

	case network.MsgTick:
		tick, err := network.DecodePayload[network.TickPayload](msg)
		if err != nil {
			return
		}
		c.setState(tick.State)
		fmt.Fprint(c.out, "\n"+tick.Text)
		c.printMeters(tick.State)
		c.printPrompt(tick.State)

	case network.MsgResult:
		res, err := network.DecodePayload[network.ResultPayload](msg)
		if err != nil {
			return
		}
		fmt.Fprint(c.out, "\n"+res.Text)

	case network.MsgOutcome:
		out, err := network.DecodePayload[game.Outcome](msg)
		if err != nil {
			return
		}
		if out.Reward.Zero() {
			fmt.Fprintln(c.out, "No luck this time.")
		}

	case network.MsgLeaderboard:
		lb, err := network.DecodePayload[network.LeaderboardPayload](msg)
		if err != nil {
			return
		}
		c.printLeaderboard(lb.Entries)

	case network.MsgError:
		perr, err := network.DecodePayload[network.ErrorPayload](msg)
		if err != nil {
			return
		}
		fmt.Fprintf(c.out, "\n! %s\n", perr.Error)
	}
}

func (c *Client) setState(snap game.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = snap
	c.awaiting = snap.MiniGame != nil
}

func (c *Client) printState(s game.Snapshot) {
	fmt.Fprintln(c.out, "\n"+strings.Repeat("=", 50))
	switch s.Phase {
	case game.PhaseProvisioning:
		if s.Character == nil {
			fmt.Fprintln(c.out, "Choose your pioneer (pick <name>).")
		} else {
			fmt.Fprintf(c.out, "%s | Dollars: $%d\n", s.Character.Name, s.Currency)
		}
		c.printWagon(s)
		if s.CanStart {
			fmt.Fprintln(c.out, "Ready to set out (start).")
		}
	default:
		fmt.Fprintf(c.out, "Day %d of %d | %s\n", s.Day, s.JourneyLength, s.Landmark)
		c.printMeters(s)
		c.printWagon(s)
		c.printPrompt(s)
	}
	fmt.Fprintln(c.out, strings.Repeat("=", 50))
}

func (c *Client) printMeters(s game.Snapshot) {
	fmt.Fprintf(c.out, "HEALTH: %d  FOOD: %d  WATER: %d\n", s.Health, s.Food, s.Water)
}

func (c *Client) printWagon(s game.Snapshot) {
	parts := make([]string, 0, len(s.Wagon))
	for _, st := range s.Wagon {
		if st.Units > 0 {
			parts = append(parts, fmt.Sprintf("%s x%d", st.Name, st.Units))
		}
	}
	if len(parts) == 0 {
		fmt.Fprintln(c.out, "Wagon: empty")
		return
	}
	fmt.Fprintln(c.out, "Wagon: "+strings.Join(parts, ", "))
}

func (c *Client) printPrompt(s game.Snapshot) {
	switch {
	case s.Terminal:
		fmt.Fprintln(c.out, strings.Repeat("*", 50))
		fmt.Fprintln(c.out, "   "+s.Headline)
		fmt.Fprintf(c.out, "   Days traveled: %d\n", s.Day)
		fmt.Fprintln(c.out, strings.Repeat("*", 50))
		fmt.Fprintln(c.out, "Record your run with 'submit <name>' or 'reset'.")
	case s.MiniGame != nil:
		fmt.Fprintln(c.out, s.MiniGame.Offer)
		fmt.Fprintln(c.out, s.MiniGame.Prompt+" (or 'decline')")
	case s.Resting:
		fmt.Fprintf(c.out, "Camp is made. Type 'rest' to %s.\n", strings.ToLower(s.AdvanceLabel))
	}
}

func (c *Client) printLeaderboard(entries []game.LeaderboardEntry) {
	fmt.Fprintln(c.out, "\nLEADERBOARD:")
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "  (no finished runs yet)")
		return
	}
	for i, e := range entries {
		fmt.Fprintf(c.out, "  %d. %s - %d days\n", i+1, e.Name, e.Days)
	}
}

func main() {
	addr := flag.String("addr", "localhost:8080", "Server address")
	session := flag.String("session", "", "Session id to resume")
	flag.Parse()

	conn, err := network.Dial("ws://"+*addr+"/ws", *session)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	c := NewClient(conn, fetchCatalog(*addr), os.Stdout)
	if err := c.Run(os.Stdin); err != nil {
		log.Fatal(err)
	}
}
