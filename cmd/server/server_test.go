package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meeker-trail/pkg/config"
	"meeker-trail/pkg/game"
	"meeker-trail/pkg/network"
)

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Rules.TickPeriod = time.Hour
	cfg.Rules.EventChance = 0
	cfg.SessionTTL = time.Minute
	return cfg
}

func newTestServer(t *testing.T) (*Server, *httptest.Server, *http.Client) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	s := NewServer(ctx, testConfig())
	ts := httptest.NewServer(s.NewRouter())
	t.Cleanup(func() {
		s.Close()
		ts.Close()
		cancel()
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return s, ts, &http.Client{Jar: jar, Timeout: 5 * time.Second}
}

func postAction(t *testing.T, c *http.Client, url string, a network.ActionPayload) (int, actionResponse) {
	t.Helper()
	body, err := json.Marshal(a)
	require.NoError(t, err)
	resp, err := c.Post(url+"/api/action", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out actionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestCatalogEndpoint(t *testing.T) {
	_, ts, c := newTestServer(t)

	resp, err := c.Get(ts.URL + "/api/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var cat game.Catalog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cat))
	assert.Len(t, cat.Characters, 5)
	assert.Len(t, cat.Supplies, 4)
	assert.Equal(t, "Independence, MO", cat.Landmarks[0])
}

func TestSessionLifecycle(t *testing.T) {
	s, ts, c := newTestServer(t)

	resp, err := c.Get(ts.URL + "/api/session")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, false, got["valid"])

	resp, err = c.Post(ts.URL+"/api/session", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 1, s.sessions.Count())

	resp, err = c.Post(ts.URL+"/api/session", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "cookie resumes the session")
	assert.Equal(t, 1, s.sessions.Count())

	resp, err = c.Get(ts.URL + "/api/session")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	resp.Body.Close()
	assert.Equal(t, true, got["valid"])
}

func TestActionEndpoint(t *testing.T) {
	_, ts, c := newTestServer(t)

	status, _ := postAction(t, c, ts.URL, network.ActionPayload{Action: network.ActStart})
	assert.Equal(t, http.StatusNotFound, status)

	resp, err := c.Post(ts.URL+"/api/session", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	status, out := postAction(t, c, ts.URL, network.ActionPayload{Action: network.ActStart})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, game.ErrEmptyWagon.Error(), out.Error)
	assert.Equal(t, game.PhaseProvisioning, out.State.Phase)

	status, out = postAction(t, c, ts.URL, network.ActionPayload{Action: network.ActSelect, Value: "Thomas Reed"})
	require.Equal(t, http.StatusOK, status, out.Error)
	assert.Equal(t, 680, out.State.Currency)

	status, out = postAction(t, c, ts.URL, network.ActionPayload{Action: network.ActBuy, Value: "clothes", Count: 2})
	require.Equal(t, http.StatusOK, status, out.Error)
	assert.Equal(t, 664, out.State.Currency)

	status, out = postAction(t, c, ts.URL, network.ActionPayload{Action: network.ActStart})
	require.Equal(t, http.StatusOK, status, out.Error)
	assert.Equal(t, game.PhaseInTransit, out.State.Phase)

	status, out = postAction(t, c, ts.URL, network.ActionPayload{Action: network.ActAdvance})
	require.Equal(t, http.StatusOK, status, out.Error)
	assert.Equal(t, 2, out.State.Day)

	status, _ = postAction(t, c, ts.URL, network.ActionPayload{Action: "teleport"})
	assert.Equal(t, http.StatusBadRequest, status)

	resp, err = c.Get(ts.URL + "/api/state")
	require.NoError(t, err)
	var snap game.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&snap))
	resp.Body.Close()
	assert.Equal(t, 2, snap.Day)
	assert.Equal(t, 95, snap.Health)
}

func TestLeaderboardIsPerSession(t *testing.T) {
	s, ts, c := newTestServer(t)

	resp, err := c.Post(ts.URL+"/api/session", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()

	u, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	require.NoError(t, err)
	var sess *Session
	for _, cookie := range c.Jar.Cookies(u.URL) {
		if cookie.Name == sessionCookie {
			sess, _ = s.sessions.GetSession(cookie.Value)
		}
	}
	require.NotNil(t, sess)
	_, err = sess.Runner.Board().Add("Abby", 130)
	require.NoError(t, err)

	resp, err = c.Get(ts.URL + "/api/leaderboard")
	require.NoError(t, err)
	var lb network.LeaderboardPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lb))
	resp.Body.Close()
	assert.Equal(t, []game.LeaderboardEntry{{Name: "Abby", Days: 130}}, lb.Entries)

	resp, err = http.Get(ts.URL + "/api/leaderboard")
	require.NoError(t, err)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&lb))
	resp.Body.Close()
	assert.Empty(t, lb.Entries)
}

func readUntil(t *testing.T, conn *websocket.Conn, want network.MessageType) network.Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		msg, err := network.DecodeMessage(data)
		require.NoError(t, err)
		if msg.Type == want {
			return msg
		}
	}
}

func sendAction(t *testing.T, conn *websocket.Conn, a network.ActionPayload) {
	t.Helper()
	b, err := network.Encode(network.MsgAction, a)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, b))
}

func TestWebsocketFlow(t *testing.T) {
	s, ts, _ := newTestServer(t)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	var sessionID string
	for _, c := range resp.Cookies() {
		if c.Name == sessionCookie {
			sessionID = c.Value
		}
	}
	require.NotEmpty(t, sessionID)

	msg := readUntil(t, conn, network.MsgState)
	snap, err := network.DecodePayload[game.Snapshot](msg)
	require.NoError(t, err)
	assert.Equal(t, game.PhaseProvisioning, snap.Phase)

	sendAction(t, conn, network.ActionPayload{Action: network.ActBuy, Value: "food"})
	msg = readUntil(t, conn, network.MsgError)
	perr, err := network.DecodePayload[network.ErrorPayload](msg)
	require.NoError(t, err)
	assert.Equal(t, game.ErrNoCharacter.Error(), perr.Error)

	sendAction(t, conn, network.ActionPayload{Action: network.ActSelect, Value: "Maria Lopez"})
	msg = readUntil(t, conn, network.MsgResult)
	res, err := network.DecodePayload[network.ResultPayload](msg)
	require.NoError(t, err)
	assert.Contains(t, res.Text, "Maria Lopez")
	msg = readUntil(t, conn, network.MsgState)
	snap, err = network.DecodePayload[game.Snapshot](msg)
	require.NoError(t, err)
	assert.Equal(t, 720, snap.Currency)

	// A second tab with the same cookie shares the run.
	header := http.Header{}
	header.Set("Cookie", sessionCookie+"="+sessionID)
	tab, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer tab.Close()

	msg = readUntil(t, tab, network.MsgState)
	snap, err = network.DecodePayload[game.Snapshot](msg)
	require.NoError(t, err)
	require.NotNil(t, snap.Character)
	assert.Equal(t, "Maria Lopez", snap.Character.Name)
	assert.Equal(t, 1, s.sessions.Count())

	sendAction(t, tab, network.ActionPayload{Action: network.ActBuy, Value: "water", Count: 4})
	msg = readUntil(t, conn, network.MsgState)
	snap, err = network.DecodePayload[game.Snapshot](msg)
	require.NoError(t, err)
	assert.Equal(t, 700, snap.Currency)
}

func TestCleanupStaleSessions(t *testing.T) {
	s, _, _ := newTestServer(t)
	sess := s.sessions.CreateSession()

	assert.Equal(t, 0, s.sessions.CleanupStale(time.Now()))
	s.sessions.Connect(sess.ID)
	assert.Equal(t, 0, s.sessions.CleanupStale(time.Now().Add(time.Hour)), "connected sessions survive")

	s.sessions.Disconnect(sess.ID)
	assert.Equal(t, 1, s.sessions.CleanupStale(time.Now().Add(time.Hour)))
	assert.Equal(t, 0, s.sessions.Count())

	_, err := sess.Runner.Snapshot(context.Background())
	assert.Error(t, err)
}
