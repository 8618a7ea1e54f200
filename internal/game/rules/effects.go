package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// canActAtSorcerySpeed reports whether seat may take turn-taking actions:
// it is the active seat, it holds priority, and the stack is empty.
func canActAtSorcerySpeed(gs *state.GameState, seat int) bool {
	return seat == gs.Active && seat == gs.Priority && len(gs.Stack) == 0
}

// EligibleAttackers lists the active seat's untapped creatures that have
// been under its control since before this turn.
func EligibleAttackers(gs *state.GameState) []core.CardID {
	var out []core.CardID
	for _, id := range gs.Creatures(gs.Active) {
		c := gs.Card(id)
		if !c.Tapped() && c.ControlTimestamp < gs.Turn {
			out = append(out, id)
		}
	}
	return out
}

// EligibleBlockers lists the defending seat's untapped creatures.
func EligibleBlockers(gs *state.GameState) []core.CardID {
	var out []core.CardID
	for _, id := range gs.Creatures(gs.Defender()) {
		if !gs.Card(id).Tapped() {
			out = append(out, id)
		}
	}
	return out
}

// PlayLand moves a land from seat's hand onto the battlefield.
func PlayLand(gs *state.GameState, seat int, id core.CardID) error {
	if !canActAtSorcerySpeed(gs, seat) || !gs.Step.IsMain() {
		return fmt.Errorf("play land outside a main step: %w", core.ErrIllegalAction)
	}
	if gs.LandsLeftToPlay <= 0 {
		return fmt.Errorf("no land plays left this turn: %w", core.ErrIllegalAction)
	}
	if !gs.InHand(seat, id) || !gs.Card(id).Def.IsLand() {
		return fmt.Errorf("card %d is not a land in seat %d's hand: %w", id, seat, core.ErrIllegalAction)
	}
	gs.RemoveFromHand(seat, id)
	gs.PutOntoBattlefield(id, seat)
	gs.LandsLeftToPlay--
	return nil
}

// CastCreature pays for a creature from seat's pool and puts it on the
// stack. It enters the battlefield when the stack object resolves.
func CastCreature(gs *state.GameState, seat int, id core.CardID) error {
	if !canActAtSorcerySpeed(gs, seat) || !gs.Step.IsMain() {
		return fmt.Errorf("cast outside a main step: %w", core.ErrIllegalAction)
	}
	if !gs.InHand(seat, id) {
		return fmt.Errorf("card %d is not in seat %d's hand: %w", id, seat, core.ErrIllegalAction)
	}
	def := gs.Card(id).Def
	if def.IsLand() {
		return fmt.Errorf("%s is a land: %w", def.Name, core.ErrIllegalAction)
	}
	if !def.IsCreature() {
		return fmt.Errorf("casting %s (%s): %w", def.Name, def.TypeLine, core.ErrUnsupportedOperation)
	}
	if err := gs.Seats[seat].Pool.Pay(def.Cost); err != nil {
		return fmt.Errorf("cast %s: %w", def.Name, err)
	}

	gs.RemoveFromHand(seat, id)
	gs.Push(state.StackObject{
		Kind:        state.StackCard,
		Card:        id,
		Controller:  seat,
		Description: def.Name,
		Resolve: func(gs *state.GameState) error {
			gs.PutOntoBattlefield(id, seat)
			return nil
		},
	})
	return nil
}

// DeclareAttackers taps the chosen attackers, records them unblocked in the
// combat assignment and hands priority to the defending seat.
func DeclareAttackers(gs *state.GameState, seat int, attackers []core.CardID) error {
	if !canActAtSorcerySpeed(gs, seat) || gs.Step != core.StepDeclareAttackers {
		return fmt.Errorf("declare attackers in %s: %w", gs.Step, core.ErrIllegalAction)
	}
	if gs.AttackersDeclared {
		return fmt.Errorf("attackers already declared: %w", core.ErrIllegalAction)
	}
	eligible := EligibleAttackers(gs)
	for _, id := range attackers {
		if !containsID(eligible, id) {
			return fmt.Errorf("card %d cannot attack: %w", id, core.ErrIllegalAction)
		}
	}
	if err := state.CheckZone("attackers", attackers); err != nil {
		return err
	}

	for _, id := range attackers {
		gs.Card(id).Tap()
	}
	gs.Combat = state.NewAssignment(attackers)
	gs.AttackersDeclared = true
	gs.Priority = gs.Defender()
	return nil
}

// DeclareBlockers installs the defending seat's blocks, returns priority to
// the active seat and advances the step. A nil assignment means no blocks.
func DeclareBlockers(gs *state.GameState, seat int, blocks state.Assignment) error {
	if seat != gs.Defender() || seat != gs.Priority {
		return fmt.Errorf("seat %d cannot declare blockers: %w", seat, core.ErrIllegalAction)
	}
	if !gs.AttackersDeclared || gs.BlockersDeclared {
		return fmt.Errorf("blockers not expected: %w", core.ErrIllegalAction)
	}
	if blocks != nil {
		if err := validateBlocks(gs, blocks); err != nil {
			return err
		}
		gs.Combat = blocks.Clone()
	}
	gs.BlockersDeclared = true
	gs.Priority = gs.Active
	return AdvanceStep(gs)
}

func validateBlocks(gs *state.GameState, blocks state.Assignment) error {
	if len(blocks) != len(gs.Combat) {
		return fmt.Errorf("block covers %d attackers, combat has %d: %w", len(blocks), len(gs.Combat), core.ErrIllegalAction)
	}
	eligible := EligibleBlockers(gs)
	var used []core.CardID
	for i, blk := range blocks {
		if blk.Attacker != gs.Combat[i].Attacker {
			return fmt.Errorf("block for unknown attacker %d: %w", blk.Attacker, core.ErrIllegalAction)
		}
		for _, id := range blk.Blockers {
			if !containsID(eligible, id) {
				return fmt.Errorf("card %d cannot block: %w", id, core.ErrIllegalAction)
			}
			used = append(used, id)
		}
	}
	return state.CheckZone("blockers", used)
}

// ActivateAbility runs ability idx of a permanent seat controls. Only mana
// abilities exist in the card pool, so the effect resolves immediately.
func ActivateAbility(gs *state.GameState, seat int, id core.CardID, idx int) error {
	if seat != gs.Priority {
		return fmt.Errorf("seat %d does not hold priority: %w", seat, core.ErrIllegalAction)
	}
	if !gs.OnBattlefield(id) || gs.Card(id).Controller != seat {
		return fmt.Errorf("seat %d does not control card %d: %w", seat, id, core.ErrIllegalAction)
	}
	abilities := gs.Card(id).Def.Abilities
	if idx < 0 || idx >= len(abilities) {
		return fmt.Errorf("card %d has no ability %d: %w", id, idx, core.ErrIllegalAction)
	}
	ability := abilities[idx]
	if ability.Available != nil && !ability.Available(gs, id) {
		return fmt.Errorf("ability %q of card %d is not available: %w", ability.Description, id, core.ErrIllegalAction)
	}
	return ability.Effect(gs, id)
}

func containsID(ids []core.CardID, id core.CardID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
