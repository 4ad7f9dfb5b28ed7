package runner

import (
	"meeker-trail/pkg/game"
	"meeker-trail/pkg/network"
)

// Conn is a display surface attached to a runner.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Attach registers a connection for broadcasts. The runner replies with
// the connection id and immediately sends it the current state.
type Attach struct {
	Conn  Conn
	Reply chan<- string
}

// Detach drops a connection without closing it.
type Detach struct {
	ConnID string
}

// Action is one player request.
type Action struct {
	Action network.ActionPayload
	Reply  chan<- Result
}

// ConnAction is an Action whose result goes back over an attached
// connection instead of a reply channel.
type ConnAction struct {
	ConnID string
	Action network.ActionPayload
}

// Query asks for the current snapshot without changing anything.
type Query struct {
	Reply chan<- game.Snapshot
}

// Result is the reply to an Action. Err carries rejections; the state in
// Snapshot is always current.
type Result struct {
	Text     string
	Outcome  *game.Outcome
	Entry    *game.LeaderboardEntry
	Snapshot game.Snapshot
	Err      error
}
