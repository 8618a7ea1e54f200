package game

import (
	"context"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// Player is the decision-making capability behind one seat. Every view is a
// clone of the live state, so a Player can inspect or simulate on it freely.
// The engine calls these synchronously and blocks until they return.
type Player interface {
	// MulliganHand reports whether the seat wants to shuffle its hand away
	// and draw one card fewer.
	MulliganHand(ctx context.Context, view *state.GameState, seat int) (bool, error)

	// GetAction picks one of actions, which are the legal actions for seat
	// in view. The engine matches the returned action by Key.
	GetAction(ctx context.Context, view *state.GameState, seat int, actions []rules.Action) (rules.Action, error)

	// ChooseAttackers returns the subset of candidates to attack with.
	ChooseAttackers(ctx context.Context, view *state.GameState, seat int, candidates []core.CardID) ([]core.CardID, error)

	// ChooseBlockers adds blockers from candidates to assignment in place.
	ChooseBlockers(ctx context.Context, view *state.GameState, seat int, assignment state.Assignment, candidates []core.CardID) error

	// OrderBlockers may reorder each attacker's blockers in place; the order
	// decides how the attacker's damage is spread.
	OrderBlockers(ctx context.Context, view *state.GameState, seat int, assignment state.Assignment) error
}
