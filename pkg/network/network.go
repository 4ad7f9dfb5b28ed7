package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"meeker-trail/pkg/game"
)

type MessageType string

const (
	// client -> server
	MsgAction MessageType = "action"

	// server -> client
	MsgState       MessageType = "state"
	MsgResult      MessageType = "result"
	MsgTick        MessageType = "tick"
	MsgOutcome     MessageType = "outcome"
	MsgLeaderboard MessageType = "leaderboard"
	MsgError       MessageType = "error"
)

// Actions a client may request.
const (
	ActSelect      = "select"
	ActBuy         = "buy"
	ActStart       = "start"
	ActAdvance     = "advance"
	ActPlay        = "play"
	ActDecline     = "decline"
	ActSubmit      = "submit"
	ActReset       = "reset"
	ActState       = "state"
	ActLeaderboard = "leaderboard"
)

type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
	Time    time.Time       `json:"time"`
}

type ActionPayload struct {
	Action string `json:"action"`
	Value  string `json:"value,omitempty"`
	Count  int    `json:"count,omitempty"`
}

type ResultPayload struct {
	Action string `json:"action"`
	Text   string `json:"text"`
}

type TickPayload struct {
	Text  string        `json:"text"`
	State game.Snapshot `json:"state"`
}

type ErrorPayload struct {
	Action string `json:"action,omitempty"`
	Error  string `json:"error"`
}

type LeaderboardPayload struct {
	Entries []game.LeaderboardEntry `json:"entries"`
}

var ErrEmptyMessage = errors.New("empty message")

// Encode wraps payload in a typed, timestamped envelope.
func Encode(t MessageType, payload any) ([]byte, error) {
	if t == "" {
		return nil, errors.New("encode: empty message type")
	}
	if payload == nil {
		return nil, fmt.Errorf("encode %s: nil payload", t)
	}
	pb, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", t, err)
	}
	return json.Marshal(Message{Type: t, Payload: pb, Time: time.Now()})
}

func DecodeMessage(b []byte) (Message, error) {
	if len(b) == 0 {
		return Message{}, ErrEmptyMessage
	}
	var m Message
	if err := json.Unmarshal(b, &m); err != nil {
		return Message{}, err
	}
	if m.Type == "" {
		return Message{}, errors.New("message has no type")
	}
	return m, nil
}

func DecodePayload[T any](m Message) (T, error) {
	var out T
	if len(m.Payload) == 0 {
		return out, fmt.Errorf("empty payload for type %q", m.Type)
	}
	err := json.Unmarshal(m.Payload, &out)
	return out, err
}

// Client is a websocket connection to a trail server. Decoded messages
// arrive on Input; Output carries encoded frames to send.
type Client struct {
	Conn   *websocket.Conn
	Input  chan Message
	Output chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// Dial opens a websocket to url. A non-empty session id is presented as
// the session cookie so a reconnecting client resumes its run.
func Dial(url, sessionID string) (*Client, error) {
	header := http.Header{}
	if sessionID != "" {
		header.Set("Cookie", "session_id="+sessionID)
	}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	c := &Client{
		Conn:   conn,
		Input:  make(chan Message, 32),
		Output: make(chan []byte, 32),
		done:   make(chan struct{}),
	}
	go c.ReadLoop()
	go c.WriteLoop()
	return c, nil
}

func (c *Client) ReadLoop() {
	defer close(c.Input)
	for {
		_, data, err := c.Conn.ReadMessage()
		if err != nil {
			return
		}
		msg, err := DecodeMessage(data)
		if err != nil {
			continue
		}
		select {
		case c.Input <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Client) WriteLoop() {
	for {
		select {
		case b := <-c.Output:
			if err := c.Conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// Send queues an action for the server.
func (c *Client) Send(a ActionPayload) error {
	b, err := Encode(MsgAction, a)
	if err != nil {
		return err
	}
	select {
	case c.Output <- b:
		return nil
	case <-c.done:
		return errors.New("connection closed")
	}
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		err = c.Conn.Close()
	})
	return err
}
