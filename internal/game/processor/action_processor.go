package processor

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// Outcome describes what applying one action did besides its own effect.
type Outcome struct {
	// Lost lists seats that lost while the action was applied, e.g. by
	// drawing from an empty library.
	Lost []int
	// Resolved lists the stack objects resolved afterwards, top first.
	Resolved []state.StackObject
}

// ActionProcessor applies seat actions to a game state
type ActionProcessor struct {
	logger zerolog.Logger
}

// NewActionProcessor creates a new action processor
func NewActionProcessor(logger zerolog.Logger) *ActionProcessor {
	return &ActionProcessor{
		logger: logger.With().Str("component", "ActionProcessor").Logger(),
	}
}

// ProcessAction applies action to gs and then resolves the stack until it
// is empty. Seat losses raised while applying are recovered and reported in
// the Outcome; any other error is returned and leaves gs in an undefined
// state.
func (ap *ActionProcessor) ProcessAction(ctx context.Context, gs *state.GameState, action rules.Action) (Outcome, error) {
	var out Outcome

	select {
	case <-ctx.Done():
		ap.logger.Warn().Err(ctx.Err()).Msg("Action processing interrupted by context cancellation")
		return out, ctx.Err()
	default:
	}

	if !gs.ValidSeat(action.Seat) || gs.Seats[action.Seat].Lost {
		ap.logger.Warn().Int("seat", action.Seat).Msg("Ignoring action from invalid or eliminated seat")
		return out, core.WrapActionError(action, core.ErrInvalidSeat)
	}

	ap.logger.Debug().Int("seat", action.Seat).Str("action", action.Key).Msg("Applying action")
	lost, err := recoverSeatLoss(action.Apply(gs))
	out.Lost = append(out.Lost, lost...)
	if err != nil {
		ap.logger.Error().Err(err).
			Int("seat", action.Seat).
			Str("action", action.Key).
			Msg("Failed to apply action")
		return out, err
	}
	for _, seat := range lost {
		ap.logger.Info().Int("seat", seat).Msg("Seat lost while applying action")
	}

	resolved, err := ap.ResolveStack(gs)
	out.Resolved = resolved
	return out, err
}

// ResolveStack pops and resolves stack objects, last in first out, until
// the stack is empty. Nobody may respond to a resolving object.
func (ap *ActionProcessor) ResolveStack(gs *state.GameState) ([]state.StackObject, error) {
	var resolved []state.StackObject
	for {
		obj, ok := gs.Pop()
		if !ok {
			return resolved, nil
		}
		if obj.Resolve != nil {
			if err := obj.Resolve(gs); err != nil {
				return resolved, core.WrapGameStateError(gs.Turn, "resolve "+obj.Description, err)
			}
		}
		ap.logger.Debug().
			Str("kind", obj.Kind.String()).
			Str("object", obj.Description).
			Int("controller", obj.Controller).
			Msg("Stack object resolved")
		resolved = append(resolved, obj)
	}
}

// recoverSeatLoss separates seat losses from other failures. It returns the
// seats that lost and the remaining error, which is nil when every joined
// error was a seat loss.
func recoverSeatLoss(err error) ([]int, error) {
	if err == nil {
		return nil, nil
	}
	losses := core.SeatLosses(err)
	if len(losses) == 0 {
		return nil, err
	}
	seats := make([]int, len(losses))
	for i, sl := range losses {
		seats[i] = sl.Seat
	}
	if rest := withoutSeatLoss(err); rest != nil {
		return seats, rest
	}
	return seats, nil
}

func withoutSeatLoss(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*core.SeatLossError); ok {
		return nil
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		var rest []error
		for _, inner := range u.Unwrap() {
			if r := withoutSeatLoss(inner); r != nil {
				rest = append(rest, r)
			}
		}
		return errors.Join(rest...)
	case interface{ Unwrap() error }:
		if withoutSeatLoss(u.Unwrap()) == nil {
			return nil
		}
		return err
	}
	return err
}
