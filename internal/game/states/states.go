package states

import (
	"fmt"
	"time"
)

// InitializingState represents game object creation
type InitializingState struct{}

func NewInitializingState() State { return &InitializingState{} }

func (s *InitializingState) Phase() GamePhase { return PhaseInitializing }

func (s *InitializingState) Enter(ctx *GameContext) error {
	ctx.Logger.Debug().Msg("Entering Initializing state")
	return nil
}

func (s *InitializingState) Exit(ctx *GameContext) error { return nil }

func (s *InitializingState) Validate(ctx *GameContext) error { return nil }

// SetupState covers seating, deck building, shuffling and mulligans
type SetupState struct{}

func NewSetupState() State { return &SetupState{} }

func (s *SetupState) Phase() GamePhase { return PhaseSetup }

func (s *SetupState) Enter(ctx *GameContext) error {
	ctx.Logger.Info().Int("seats", ctx.SeatCount).Msg("Starting game setup")
	return nil
}

func (s *SetupState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().Msg("Game setup complete")
	return nil
}

func (s *SetupState) Validate(ctx *GameContext) error {
	if ctx.SeatCount != 2 {
		return fmt.Errorf("game needs exactly 2 seats, got %d", ctx.SeatCount)
	}
	return nil
}

// RunningState represents active gameplay
type RunningState struct{}

func NewRunningState() State { return &RunningState{} }

func (s *RunningState) Phase() GamePhase { return PhaseRunning }

func (s *RunningState) Enter(ctx *GameContext) error {
	ctx.StartTime = time.Now()
	ctx.Logger.Info().
		Time("start_time", ctx.StartTime).
		Msg("Game started")
	return nil
}

func (s *RunningState) Exit(ctx *GameContext) error {
	ctx.Logger.Debug().
		Dur("elapsed", ctx.GetElapsedTime()).
		Msg("Exiting running state")
	return nil
}

func (s *RunningState) Validate(ctx *GameContext) error {
	if ctx.SeatCount < 2 {
		return fmt.Errorf("cannot run game with fewer than 2 seats")
	}
	return nil
}

// EndingState represents winner determination
type EndingState struct{}

func NewEndingState() State { return &EndingState{} }

func (s *EndingState) Phase() GamePhase { return PhaseEnding }

func (s *EndingState) Enter(ctx *GameContext) error {
	ctx.Logger.Info().
		Int("winner", ctx.Winner).
		Bool("draw", ctx.Draw).
		Msg("Game ending, determining final results")
	return nil
}

func (s *EndingState) Exit(ctx *GameContext) error { return nil }

func (s *EndingState) Validate(ctx *GameContext) error {
	if !ctx.Decided() {
		return fmt.Errorf("ending state requires a winner or a draw")
	}
	return nil
}

// EndedState represents a completed game
type EndedState struct{}

func NewEndedState() State { return &EndedState{} }

func (s *EndedState) Phase() GamePhase { return PhaseEnded }

func (s *EndedState) Enter(ctx *GameContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Info().
		Int("winner", ctx.Winner).
		Dur("game_duration", ctx.GetElapsedTime()).
		Msg("Game ended")
	return nil
}

func (s *EndedState) Exit(ctx *GameContext) error { return nil }

func (s *EndedState) Validate(ctx *GameContext) error { return nil }

// ErrorState represents an unrecoverable failure
type ErrorState struct{}

func NewErrorState() State { return &ErrorState{} }

func (s *ErrorState) Phase() GamePhase { return PhaseError }

func (s *ErrorState) Enter(ctx *GameContext) error {
	ctx.EndTime = time.Now()
	ctx.Logger.Error().
		Err(ctx.Error).
		Msg("Game entered error state")
	return nil
}

func (s *ErrorState) Exit(ctx *GameContext) error { return nil }

func (s *ErrorState) Validate(ctx *GameContext) error {
	if ctx.Error == nil {
		return fmt.Errorf("error state requires an error in context")
	}
	return nil
}
