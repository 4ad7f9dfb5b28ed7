package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"meeker-trail/pkg/network"
	"meeker-trail/pkg/runner"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var (
	errClientClosed = errors.New("client closed")
	errClientSlow   = errors.New("client send buffer full")
)

// Hub tracks open sockets so they can be closed on shutdown.
type Hub struct {
	clients map[*wsClient]bool
	mu      sync.RWMutex
}

// wsClient is a runner.Conn backed by a websocket.
type wsClient struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	session *Session
	connID  string

	mu     sync.Mutex
	closed bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*wsClient]bool),
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CloseAll ends every socket.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		_ = c.Close()
	}
}

func (c *wsClient) Send(b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errClientClosed
	}
	select {
	case c.send <- b:
		return nil
	default:
		return errClientSlow
	}
}

// Close stops the write pump, which closes the socket.
func (c *wsClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

func serveWs(hub *Hub, sessions *SessionManager, w http.ResponseWriter, r *http.Request) {
	var cookieID string
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		cookieID = cookie.Value
	}
	sess, resumed := sessions.GetOrCreate(cookieID)
	if resumed {
		log.Printf("Session %s resumed", sess.ID)
	}

	upgradeHeaders := http.Header{}
	upgradeHeaders.Add("Set-Cookie", newSessionCookie(sess.ID).String())

	conn, err := upgrader.Upgrade(w, r, upgradeHeaders)
	if err != nil {
		log.Println("upgrade error:", err)
		return
	}

	client := &wsClient{
		hub:     hub,
		conn:    conn,
		send:    make(chan []byte, 256),
		session: sess,
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	reply := make(chan string, 1)
	if err := sess.Runner.Send(ctx, runner.Attach{Conn: client, Reply: reply}); err != nil {
		log.Printf("Session %s attach failed: %v", sess.ID, err)
		conn.Close()
		return
	}
	select {
	case client.connID = <-reply:
	case <-ctx.Done():
		log.Printf("Session %s attach timed out", sess.ID)
		conn.Close()
		return
	}

	hub.register(client)
	sessions.Connect(sess.ID)

	go client.writePump()
	go client.readPump(sessions)
}

func (c *wsClient) readPump(sessions *SessionManager) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WebSocket readPump recovered from panic: %v", r)
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		_ = c.session.Runner.Send(ctx, runner.Detach{ConnID: c.connID})
		cancel()
		sessions.Disconnect(c.session.ID)
		c.hub.unregister(c)
		_ = c.Close()
		c.conn.Close()
	}()

	c.conn.SetReadLimit(1024)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		msg, err := network.DecodeMessage(data)
		if err != nil {
			c.sendError("", err)
			continue
		}
		if msg.Type != network.MsgAction {
			c.sendError("", errors.New("unsupported message type "+string(msg.Type)))
			continue
		}
		action, err := network.DecodePayload[network.ActionPayload](msg)
		if err != nil {
			c.sendError("", err)
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = c.session.Runner.Send(ctx, runner.ConnAction{ConnID: c.connID, Action: action})
		cancel()
		if err != nil {
			c.sendError(action.Action, err)
			return
		}
	}
}

func (c *wsClient) sendError(action string, err error) {
	b, encErr := network.Encode(network.MsgError, network.ErrorPayload{Action: action, Error: err.Error()})
	if encErr != nil {
		return
	}
	_ = c.Send(b)
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		if r := recover(); r != nil {
			log.Printf("WebSocket writePump recovered from panic: %v", r)
		}
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func newSessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
		MaxAge:   86400 * 30,
	}
}
