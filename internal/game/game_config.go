package game

import (
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/cards"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
)

const (
	DefaultStartingLife     = 20
	DefaultStartingHandSize = 7
	DefaultLandsPerTurn     = 1
	DefaultMaxMulligans     = 7
	DefaultMaxActions       = 100000
)

// GameConfig holds everything needed to set up one game
type GameConfig struct {
	// GameID defaults to a random UUID
	GameID string

	// Players and Decklists are indexed by seat
	Players   []Player
	Decklists []string

	// Registry defaults to cards.DefaultRegistry()
	Registry *cards.Registry

	StartingLife     int
	StartingHandSize int
	LandsPerTurn     int
	MaxMulligans     int

	// MaxActions ends the game as a draw once this many actions were applied
	MaxActions int

	// Rng drives seating, shuffles and mulligans; defaults to a time seed
	Rng *rand.Rand

	Logger zerolog.Logger

	// EventBus lets callers subscribe before the game starts; one is
	// created when nil
	EventBus *events.EventBus
}

// DefaultGameConfig returns a config with the standard rules constants set
func DefaultGameConfig() GameConfig {
	return GameConfig{
		StartingLife:     DefaultStartingLife,
		StartingHandSize: DefaultStartingHandSize,
		LandsPerTurn:     DefaultLandsPerTurn,
		MaxMulligans:     DefaultMaxMulligans,
		MaxActions:       DefaultMaxActions,
		Logger:           zerolog.Nop(),
	}
}
