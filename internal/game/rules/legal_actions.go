package rules

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// LegalActions returns every action seat may take in gs, in discovery
// order: step actions, land plays, creature casts, attack declarations,
// block declarations, then ability activations. A seat without priority
// has no actions. It never mutates gs.
func LegalActions(gs *state.GameState, seat int) ([]Action, error) {
	if !gs.ValidSeat(seat) {
		return nil, fmt.Errorf("legal actions for seat %d: %w", seat, core.ErrInvalidSeat)
	}
	if seat != gs.Priority {
		return nil, nil
	}
	if err := state.CheckZone(fmt.Sprintf("seat %d hand", seat), gs.Seats[seat].Hand); err != nil {
		return nil, err
	}

	actions := []Action{advanceAction(seat), skipAction(seat)}

	lands, creatures := castableCards(gs, seat)
	for _, id := range lands {
		actions = append(actions, playLandAction(gs, seat, id))
	}
	for _, id := range creatures {
		actions = append(actions, castAction(gs, seat, id))
	}

	if canDeclareAttackers(gs, seat) {
		for _, subset := range PowerSet(EligibleAttackers(gs)) {
			actions = append(actions, attackAction(seat, subset))
		}
	}

	if canDeclareBlockers(gs, seat) {
		blockers := EligibleBlockers(gs)
		if len(blockers) == 0 {
			actions = append(actions, noBlockAction(seat))
		} else {
			for _, blocks := range EnumerateAssignments(gs.Combat.Attackers(), blockers) {
				actions = append(actions, blockAction(seat, blocks))
			}
		}
	}

	for _, src := range availableAbilities(gs, seat) {
		actions = append(actions, abilityAction(gs, seat, src.card, src.index))
	}
	return actions, nil
}

// RandomAction draws one action uniformly from the set LegalActions would
// return, without enumerating the attack and block declarations.
func RandomAction(gs *state.GameState, seat int, rng *rand.Rand) (Action, error) {
	if !gs.ValidSeat(seat) {
		return Action{}, fmt.Errorf("random action for seat %d: %w", seat, core.ErrInvalidSeat)
	}
	if seat != gs.Priority {
		return Action{}, fmt.Errorf("seat %d: %w", seat, core.ErrNoLegalActions)
	}
	if err := state.CheckZone(fmt.Sprintf("seat %d hand", seat), gs.Seats[seat].Hand); err != nil {
		return Action{}, err
	}

	lands, creatures := castableCards(gs, seat)
	abilities := availableAbilities(gs, seat)

	var attackers, blockers, blockTargets []core.CardID
	attackWeight, blockWeight := 0.0, 0.0
	if canDeclareAttackers(gs, seat) {
		attackers = EligibleAttackers(gs)
		attackWeight = CountAssignments(1, len(attackers))
	}
	if canDeclareBlockers(gs, seat) {
		blockers = EligibleBlockers(gs)
		blockTargets = gs.Combat.Attackers()
		blockWeight = 1
		if len(blockers) > 0 {
			blockWeight = CountAssignments(len(blockTargets), len(blockers))
		}
	}

	total := 2 + float64(len(lands)+len(creatures)+len(abilities)) + attackWeight + blockWeight
	r := rng.Float64() * total

	switch {
	case r < 1:
		return advanceAction(seat), nil
	case r < 2:
		return skipAction(seat), nil
	}
	r -= 2
	if i := int(r); i < len(lands) {
		return playLandAction(gs, seat, lands[i]), nil
	}
	r -= float64(len(lands))
	if i := int(r); i < len(creatures) {
		return castAction(gs, seat, creatures[i]), nil
	}
	r -= float64(len(creatures))
	if r < attackWeight {
		var chosen []core.CardID
		for _, id := range attackers {
			if rng.Intn(2) == 1 {
				chosen = append(chosen, id)
			}
		}
		return attackAction(seat, chosen), nil
	}
	r -= attackWeight
	if r < blockWeight {
		if len(blockers) == 0 {
			return noBlockAction(seat), nil
		}
		return blockAction(seat, randomAssignment(blockTargets, blockers, rng)), nil
	}
	if len(abilities) == 0 {
		return advanceAction(seat), nil
	}
	i := min(int(r-blockWeight), len(abilities)-1)
	return abilityAction(gs, seat, abilities[i].card, abilities[i].index), nil
}

// randomAssignment picks each blocker's attacker (or none) uniformly. The
// blockers are added last to first so the lists match the order produced
// by EnumerateAssignments.
func randomAssignment(attackers, blockers []core.CardID, rng *rand.Rand) state.Assignment {
	blocks := state.NewAssignment(attackers)
	if len(attackers) == 0 {
		return blocks
	}
	for i := len(blockers) - 1; i >= 0; i-- {
		choice := rng.Intn(len(attackers) + 1)
		if choice == len(attackers) {
			continue
		}
		blocks.AddBlocker(attackers[choice], blockers[i])
	}
	return blocks
}

func canDeclareAttackers(gs *state.GameState, seat int) bool {
	return canActAtSorcerySpeed(gs, seat) && gs.Step == core.StepDeclareAttackers && !gs.AttackersDeclared
}

func canDeclareBlockers(gs *state.GameState, seat int) bool {
	return seat == gs.Defender() && seat == gs.Priority && gs.AttackersDeclared && !gs.BlockersDeclared
}

func castableCards(gs *state.GameState, seat int) (lands, creatures []core.CardID) {
	if !canActAtSorcerySpeed(gs, seat) || !gs.Step.IsMain() {
		return nil, nil
	}
	pool := gs.Seats[seat].Pool
	for _, id := range gs.Seats[seat].Hand {
		def := gs.Card(id).Def
		switch {
		case def.IsLand():
			if gs.LandsLeftToPlay > 0 {
				lands = append(lands, id)
			}
		case def.IsCreature():
			if pool.CanPay(def.Cost) {
				creatures = append(creatures, id)
			}
		}
	}
	return lands, creatures
}

type abilitySource struct {
	card  core.CardID
	index int
}

func availableAbilities(gs *state.GameState, seat int) []abilitySource {
	var out []abilitySource
	for _, id := range gs.Permanents(seat) {
		for i, ability := range gs.Card(id).Def.Abilities {
			if ability.Available == nil || ability.Available(gs, id) {
				out = append(out, abilitySource{card: id, index: i})
			}
		}
	}
	return out
}
