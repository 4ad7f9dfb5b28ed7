package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meeker-trail/pkg/config"
)

// Server holds the sessions and sockets behind the HTTP surface.
type Server struct {
	cfg      config.Config
	sessions *SessionManager
	hub      *Hub
}

func NewServer(ctx context.Context, cfg config.Config) *Server {
	return &Server{
		cfg:      cfg,
		sessions: NewSessionManager(ctx, cfg),
		hub:      NewHub(),
	}
}

// Close ends every socket and runner.
func (s *Server) Close() {
	s.hub.CloseAll()
	s.sessions.Close()
}

// cleanupLoop reaps stale sessions until ctx is done.
func (s *Server) cleanupLoop(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sessions.CleanupStale(now); n > 0 {
				log.Printf("Cleaned up %d stale sessions, %d remain", n, s.sessions.Count())
			}
		}
	}
}

func main() {
	httpPort := flag.String("http", "", "HTTP server port (overrides config and HTTP_PORT)")
	configPath := flag.String("config", "", "YAML rules and catalog file")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *httpPort != "" {
		cfg.HTTPPort = *httpPort
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := NewServer(ctx, cfg)
	go s.cleanupLoop(ctx, 5*time.Minute)

	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      s.NewRouter(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	log.Printf("HTTP server listening on :%s (tick %s, %d-day journey)", cfg.HTTPPort, cfg.Rules.TickPeriod, cfg.Rules.JourneyLength)
	log.Println("Meeker Trail server running!")

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
}
