package rules

import (
	"errors"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// StepOnce moves gs to the next step of the turn and runs that step's fixed
// effect. Every transition empties all mana pools and hands priority to the
// active seat. A seat that decks out during the draw step is marked lost and
// reported through the returned error, but the transition still completes.
func StepOnce(gs *state.GameState) error {
	gs.Step = gs.Step.Next()
	gs.ClearPools()
	err := enterStep(gs)
	gs.Priority = gs.Active
	return err
}

// AdvanceStep performs one transition and then keeps transitioning until
// the game reaches a step with a decision point.
func AdvanceStep(gs *state.GameState) error {
	var errs []error
	for {
		if err := StepOnce(gs); err != nil {
			errs = append(errs, err)
		}
		if gs.Step.IsDecisionPoint() {
			return errors.Join(errs...)
		}
	}
}

// SkipToMain advances until the next first main step.
func SkipToMain(gs *state.GameState) error {
	var errs []error
	for {
		if err := AdvanceStep(gs); err != nil {
			errs = append(errs, err)
		}
		if gs.Step == core.StepMain1 {
			return errors.Join(errs...)
		}
	}
}

func enterStep(gs *state.GameState) error {
	switch gs.Step {
	case core.StepUntap:
		for _, id := range gs.Permanents(gs.Active) {
			gs.Card(id).Untap()
		}
	case core.StepDraw:
		return gs.Draw(gs.Active)
	case core.StepCombatDamage:
		ApplyCombatDamage(gs)
	case core.StepEndCombat:
		gs.Combat = nil
		gs.AttackersDeclared = false
		gs.BlockersDeclared = false
	case core.StepCleanup:
		// Lethal damage is settled before it is cleared; a skip from
		// combat gets here with no state-based check in between.
		destroyLethallyDamaged(gs)
		for _, id := range gs.Battlefield {
			gs.Card(id).Damage = 0
		}
		gs.Active = gs.Opponent(gs.Active)
		gs.LandsLeftToPlay = gs.LandsPerTurn
		gs.Turn++
	}
	return nil
}

// ApplyCombatDamage resolves the current combat assignment. An unblocked
// attacker deals its power to the defending seat. A blocked attacker
// spends its power across its blockers in order, each absorbing at most its
// toughness, while taking the full power of every blocker.
func ApplyCombatDamage(gs *state.GameState) {
	defender := gs.Defender()
	for _, block := range gs.Combat {
		if !gs.OnBattlefield(block.Attacker) {
			continue
		}
		attacker := gs.Card(block.Attacker)
		if len(block.Blockers) == 0 {
			gs.Seats[defender].Life -= attacker.Power()
			continue
		}

		budget := attacker.Power()
		for _, id := range block.Blockers {
			if !gs.OnBattlefield(id) {
				continue
			}
			blocker := gs.Card(id)
			attacker.Damage += blocker.Power()
			dealt := min(budget, blocker.Toughness())
			if dealt > 0 {
				blocker.Damage += dealt
				budget -= dealt
			}
		}
	}
}
