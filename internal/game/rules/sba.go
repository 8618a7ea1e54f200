package rules

import (
	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// SBAResult reports what a state-based action pass changed.
type SBAResult struct {
	Lost      []int
	Destroyed []core.CardID
}

// ApplyStateBasedActions marks seats at zero or less life as lost, moves
// lethally damaged creatures to their owners' graveyards and checks the
// battlefield for duplicate references. A duplicate is an
// InvariantViolation and leaves the state untouched.
func ApplyStateBasedActions(gs *state.GameState) (SBAResult, error) {
	var res SBAResult
	for i := range gs.Seats {
		s := &gs.Seats[i]
		if !s.Lost && s.Life <= 0 {
			s.Lost = true
			res.Lost = append(res.Lost, i)
		}
	}

	if err := state.CheckZone("battlefield", gs.Battlefield); err != nil {
		return res, err
	}

	res.Destroyed = destroyLethallyDamaged(gs)
	return res, nil
}

// destroyLethallyDamaged moves every creature whose marked damage has
// reached its toughness to its owner's graveyard.
func destroyLethallyDamaged(gs *state.GameState) []core.CardID {
	var dying []core.CardID
	for _, id := range gs.Battlefield {
		if gs.Card(id).LethallyDamaged() {
			dying = append(dying, id)
		}
	}
	for _, id := range dying {
		gs.MoveToGraveyard(id)
	}
	return dying
}
