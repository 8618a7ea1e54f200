package states

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
)

// GameContext provides game-specific information to states for making decisions
type GameContext struct {
	// GameID uniquely identifies this game instance
	GameID string

	// Logger for state-specific logging
	Logger zerolog.Logger

	// SeatCount is the number of seats in the game
	SeatCount int

	// StartTime is when the game started (PhaseRunning entered)
	StartTime time.Time

	// EndTime is when the game reached PhaseEnded
	EndTime time.Time

	// Winner is the winning seat, core.NoSeat while undecided or on a draw
	Winner int

	// Draw is set when the game ended without a winner
	Draw bool

	// Error holds any error that caused transition to PhaseError
	Error error
}

// NewGameContext creates a new game context
func NewGameContext(gameID string, seats int, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID:    gameID,
		SeatCount: seats,
		Logger:    logger.With().Str("game_id", gameID).Logger(),
		Winner:    core.NoSeat,
	}
}

// Decided reports whether the game has a result, either a winner or a draw
func (gc *GameContext) Decided() bool {
	return gc.Winner != core.NoSeat || gc.Draw
}

// GetElapsedTime returns the time elapsed since game start, up to the end
// time once the game has ended
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	if !gc.EndTime.IsZero() {
		return gc.EndTime.Sub(gc.StartTime)
	}
	return time.Since(gc.StartTime)
}
