package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"meeker-trail/pkg/game"
)

// Config is the full server configuration. Keys missing from a YAML file
// keep their defaults.
type Config struct {
	HTTPPort   string        `yaml:"http_port"`
	SessionTTL time.Duration `yaml:"session_ttl"`
	Rules      game.Rules    `yaml:"rules"`
	Catalog    game.Catalog  `yaml:"catalog"`
}

func Default() Config {
	return Config{
		HTTPPort:   "8080",
		SessionTTL: 24 * time.Hour,
		Rules:      game.DefaultRules(),
		Catalog:    game.DefaultCatalog(),
	}
}

// Load builds the config from defaults, then the YAML file at path (if any),
// then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("TRAIL_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := cfg.merge(data); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		log.Printf("Loaded config from %s", path)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadEnv reads .env files into the process environment. A missing file is
// not an error.
func LoadEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		log.Printf("Failed to load environment file: %v", err)
		return
	}
	log.Println("Successfully loaded environment variables")
}

// merge decodes YAML over the current values. Keys absent from the file keep
// their defaults; keys present win even when zero.
func (c *Config) merge(data []byte) error {
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HTTP_PORT"); v != "" {
		c.HTTPPort = v
	}
	if v := os.Getenv("TRAIL_TICK"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRAIL_TICK: %w", err)
		}
		c.Rules.TickPeriod = d
	}
	if v := os.Getenv("TRAIL_EVENT_EVERY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRAIL_EVENT_EVERY: %w", err)
		}
		c.Rules.EventEvery = n
	}
	if v := os.Getenv("TRAIL_EVENT_CHANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TRAIL_EVENT_CHANCE: %w", err)
		}
		c.Rules.EventChance = f
	}
	if v := os.Getenv("TRAIL_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRAIL_SESSION_TTL: %w", err)
		}
		c.SessionTTL = d
	}
	return nil
}

// Validate rejects configurations the simulation cannot run with.
func (c Config) Validate() error {
	r := c.Rules
	switch {
	case r.JourneyLength <= 0:
		return fmt.Errorf("journey_length must be positive, got %d", r.JourneyLength)
	case r.RestEvery < 0:
		return fmt.Errorf("rest_every must not be negative, got %d", r.RestEvery)
	case r.TickPeriod <= 0:
		return fmt.Errorf("tick_period must be positive, got %s", r.TickPeriod)
	case r.EventChance < 0 || r.EventChance > 1:
		return fmt.Errorf("event_chance must be within [0,1], got %v", r.EventChance)
	case r.EventEvery < 0:
		return fmt.Errorf("event_every must not be negative, got %d", r.EventEvery)
	case c.SessionTTL <= 0:
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}

	if len(c.Catalog.Characters) == 0 {
		return errors.New("catalog has no characters")
	}
	if len(c.Catalog.Supplies) == 0 {
		return errors.New("catalog has no supplies")
	}
	if len(c.Catalog.Landmarks) == 0 {
		return errors.New("catalog has no landmarks")
	}
	seen := make(map[string]bool, len(c.Catalog.Supplies))
	for _, s := range c.Catalog.Supplies {
		if s.ID == "" {
			return errors.New("supply with empty id")
		}
		if seen[s.ID] {
			return fmt.Errorf("duplicate supply id %q", s.ID)
		}
		if s.Price <= 0 {
			return fmt.Errorf("supply %q must have a positive price", s.ID)
		}
		seen[s.ID] = true
	}
	for _, ch := range c.Catalog.Characters {
		if ch.Name == "" {
			return errors.New("character with empty name")
		}
		if ch.Dollars < 0 {
			return fmt.Errorf("character %q has negative dollars", ch.Name)
		}
	}
	return nil
}
