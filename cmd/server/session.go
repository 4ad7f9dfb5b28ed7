package main

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"meeker-trail/pkg/config"
	"meeker-trail/pkg/game"
	"meeker-trail/pkg/runner"
)

const sessionCookie = "session_id"

// Session is one player's run plus leaderboard. Every tab presenting the
// same cookie shares it.
type Session struct {
	ID        string
	Runner    *runner.Runner
	CreatedAt time.Time
	LastSeen  time.Time
	conns     int
	cancel    context.CancelFunc
}

type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex
	ctx      context.Context
	cfg      config.Config
}

func NewSessionManager(ctx context.Context, cfg config.Config) *SessionManager {
	return &SessionManager{
		sessions: make(map[string]*Session),
		ctx:      ctx,
		cfg:      cfg,
	}
}

// CreateSession starts a fresh journey in Provisioning with its own runner.
func (sm *SessionManager) CreateSession() *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(sm.ctx)
	j := game.NewJourney(sm.cfg.Catalog, sm.cfg.Rules, nil)

	now := time.Now()
	sess := &Session{
		ID:        id,
		Runner:    runner.New(id[:8], j, game.NewLeaderboard()),
		CreatedAt: now,
		LastSeen:  now,
		cancel:    cancel,
	}
	go sess.Runner.Run(ctx)

	sm.mu.Lock()
	sm.sessions[id] = sess
	sm.mu.Unlock()

	log.Printf("Session %s created", id)
	return sess
}

// GetSession looks up a live session and marks it seen.
func (sm *SessionManager) GetSession(id string) (*Session, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[id]
	if !ok {
		return nil, false
	}
	s.LastSeen = time.Now()
	return s, true
}

// GetOrCreate resumes the session named by id or starts a new one.
func (sm *SessionManager) GetOrCreate(id string) (*Session, bool) {
	if id != "" {
		if s, ok := sm.GetSession(id); ok {
			return s, true
		}
	}
	return sm.CreateSession(), false
}

func (sm *SessionManager) Connect(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[id]; ok {
		s.conns++
		s.LastSeen = time.Now()
	}
}

func (sm *SessionManager) Disconnect(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[id]; ok {
		if s.conns > 0 {
			s.conns--
		}
		s.LastSeen = time.Now()
	}
}

func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// CleanupStale tears down sessions with no open connections that have not
// been seen for the configured TTL.
func (sm *SessionManager) CleanupStale(now time.Time) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	removed := 0
	for id, s := range sm.sessions {
		if s.conns > 0 || now.Sub(s.LastSeen) < sm.cfg.SessionTTL {
			continue
		}
		s.stop()
		delete(sm.sessions, id)
		removed++
		log.Printf("Stale session %s cleaned up", id)
	}
	return removed
}

// Close stops every runner.
func (sm *SessionManager) Close() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for id, s := range sm.sessions {
		s.stop()
		delete(sm.sessions, id)
	}
}

func (s *Session) stop() {
	s.Runner.Stop()
	s.cancel()
}
