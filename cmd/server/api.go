package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"meeker-trail/pkg/game"
	"meeker-trail/pkg/network"
	"meeker-trail/pkg/runner"
)

// NewRouter wires the REST API and the websocket endpoint.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(s.hub, s.sessions, w, r)
	}).Methods("GET")

	r.HandleFunc("/api/catalog", s.handleCatalog).Methods("GET")
	r.HandleFunc("/api/session", s.handleGetSession).Methods("GET")
	r.HandleFunc("/api/session", s.handleCreateSession).Methods("POST")
	r.HandleFunc("/api/state", s.handleState).Methods("GET")
	r.HandleFunc("/api/leaderboard", s.handleLeaderboard).Methods("GET")
	r.HandleFunc("/api/action", s.handleAction).Methods("POST")

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, network.ErrorPayload{Error: err.Error()})
}

// session resolves the cookie to a live session.
func (s *Server) session(r *http.Request) (*Session, bool) {
	cookie, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.sessions.GetSession(cookie.Value)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Catalog)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"valid": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"valid":      true,
		"id":         sess.ID,
		"created_at": sess.CreatedAt,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var cookieID string
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		cookieID = cookie.Value
	}
	sess, resumed := s.sessions.GetOrCreate(cookieID)
	http.SetCookie(w, newSessionCookie(sess.ID))
	status := http.StatusCreated
	if resumed {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]any{"valid": true, "id": sess.ID})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no session"))
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	snap, err := sess.Runner.Snapshot(ctx)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries := []game.LeaderboardEntry{}
	if sess, ok := s.session(r); ok {
		entries = sess.Runner.Board().Entries()
	}
	writeJSON(w, http.StatusOK, network.LeaderboardPayload{Entries: entries})
}

type actionResponse struct {
	Text    string                 `json:"text,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Outcome *game.Outcome          `json:"outcome,omitempty"`
	Entry   *game.LeaderboardEntry `json:"entry,omitempty"`
	State   game.Snapshot          `json:"state"`
}

// handleAction runs one action against the session and returns the result
// with the resulting state. Rejections are 422 with the state unchanged.
func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(r)
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("no session"))
		return
	}
	var a network.ActionPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()
	res, err := sess.Runner.Do(ctx, a)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}

	resp := actionResponse{
		Text:    res.Text,
		Outcome: res.Outcome,
		Entry:   res.Entry,
		State:   res.Snapshot,
	}
	status := http.StatusOK
	if res.Err != nil {
		resp.Error = res.Err.Error()
		status = http.StatusUnprocessableEntity
		if errors.Is(res.Err, runner.ErrUnknownAction) {
			status = http.StatusBadRequest
		}
	}
	writeJSON(w, status, resp)
}
