package rules

import (
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// WinConditionChecker handles game over detection and winner determination
type WinConditionChecker struct {
	logger zerolog.Logger
}

// NewWinConditionChecker creates a new win condition checker
func NewWinConditionChecker(logger zerolog.Logger) *WinConditionChecker {
	return &WinConditionChecker{
		logger: logger.With().Str("component", "WinConditionChecker").Logger(),
	}
}

// CheckGameOver reports whether at most one seat is still in the game.
// Returns (isGameOver, winnerSeat); winnerSeat is core.NoSeat for a draw or
// a game still in progress.
func (wc *WinConditionChecker) CheckGameOver(gs *state.GameState) (bool, int) {
	gameOver, winner := GameOver(gs)
	if !gameOver {
		return false, core.NoSeat
	}
	if winner != core.NoSeat {
		wc.logger.Info().Int("winner_seat", winner).Msg("Winner determined")
	} else {
		wc.logger.Info().Msg("No winner found (draw, all seats eliminated simultaneously)")
	}
	return true, winner
}

// GameOver is the logger-free form of CheckGameOver used by simulations.
func GameOver(gs *state.GameState) (bool, int) {
	alive := 0
	last := core.NoSeat
	for i, s := range gs.Seats {
		if !s.Lost && s.Life > 0 {
			alive++
			last = i
		}
	}
	if alive > 1 {
		return false, core.NoSeat
	}
	if alive == 1 {
		return true, last
	}
	return true, core.NoSeat
}
