package game

import (
	"strings"
	"time"
)

// Character is a selectable pioneer. Characters are read-only once loaded.
type Character struct {
	Name     string `json:"name" yaml:"name"`
	Bio      string `json:"bio" yaml:"bio"`
	Dollars  int    `json:"dollars" yaml:"dollars"`
	Portrait string `json:"portrait" yaml:"portrait"`
}

// Supply is one kind of good sold in the shop.
type Supply struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Price int    `json:"price" yaml:"price"`
	Image string `json:"image" yaml:"image"`
}

// Catalog is the static configuration shared by every run in a process.
type Catalog struct {
	Characters []Character `json:"characters" yaml:"characters"`
	Supplies   []Supply    `json:"supplies" yaml:"supplies"`
	Landmarks  []string    `json:"landmarks" yaml:"landmarks"`
}

// FoodSupplyID is the wagon slot credited by a successful hunt or catch.
const FoodSupplyID = "food"

func DefaultCatalog() Catalog {
	return Catalog{
		Characters: []Character{
			{Name: "Ezra Meeker", Bio: "Real pioneer with vast trail experience", Dollars: 860, Portrait: "/pfp-ezra.png"},
			{Name: "Clara Jones", Bio: "Doctor with medical skills", Dollars: 750, Portrait: "/pfp-clara.png"},
			{Name: "Thomas Reed", Bio: "Farmer with a large family", Dollars: 680, Portrait: "/pfp-thomas.png"},
			{Name: "Maria Lopez", Bio: "Trader with survival expertise", Dollars: 720, Portrait: "/pfp-maria.png"},
			{Name: "John Smith", Bio: "Blacksmith seeking adventure", Dollars: 590, Portrait: "/pfp-john.png"},
		},
		Supplies: []Supply{
			{ID: "food", Name: "Food", Price: 10, Image: "/food.png"},
			{ID: "water", Name: "Water", Price: 5, Image: "/water.png"},
			{ID: "tools", Name: "Tools", Price: 15, Image: "/tools.png"},
			{ID: "clothes", Name: "Clothes", Price: 8, Image: "/clothes.png"},
		},
		Landmarks: []string{
			"Independence, MO", "Kansas River Crossing", "Fort Kearny", "Chimney Rock", "Fort Laramie",
			"Independence Rock", "South Pass", "Green River", "Fort Bridger", "Soda Springs",
			"Fort Hall", "Snake River Crossing", "Fort Boise", "Blue Mountains", "The Dalles",
			"Puyallup, the Hop Valley", "Oregon City",
		},
	}
}

// FindCharacter looks a character up by case-insensitive name.
func (c Catalog) FindCharacter(name string) (Character, bool) {
	name = strings.TrimSpace(name)
	for _, ch := range c.Characters {
		if strings.EqualFold(ch.Name, name) {
			return ch, true
		}
	}
	return Character{}, false
}

func (c Catalog) FindSupply(id string) (Supply, bool) {
	id = strings.TrimSpace(id)
	for _, s := range c.Supplies {
		if strings.EqualFold(s.ID, id) {
			return s, true
		}
	}
	return Supply{}, false
}

// Rules are the tuning knobs of the simulation.
type Rules struct {
	JourneyLength int           `json:"journey_length" yaml:"journey_length"`
	RestEvery     int           `json:"rest_every" yaml:"rest_every"`
	TickPeriod    time.Duration `json:"tick_period" yaml:"tick_period"`

	Decay      Meters `json:"decay" yaml:"decay"`
	RestHealth int    `json:"rest_health" yaml:"rest_health"`
	RestWater  int    `json:"rest_water" yaml:"rest_water"`

	EventChance float64 `json:"event_chance" yaml:"event_chance"`
	// EventEvery restricts random events to days divisible by it. 1 means any day.
	EventEvery int `json:"event_every" yaml:"event_every"`
}

// Meters groups the three depleting quantities.
type Meters struct {
	Health int `json:"health" yaml:"health"`
	Food   int `json:"food" yaml:"food"`
	Water  int `json:"water" yaml:"water"`
}

const (
	MeterMax = 100
	MeterMin = 0
)

func DefaultRules() Rules {
	return Rules{
		JourneyLength: 145,
		RestEvery:     15,
		TickPeriod:    2 * time.Second,
		Decay:         Meters{Health: 5, Food: 10, Water: 15},
		RestHealth:    20,
		RestWater:     50,
		EventChance:   0.30,
		EventEvery:    1,
	}
}
