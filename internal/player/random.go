package player

import (
	"context"
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ManaSearch/internal/game"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

var _ game.Player = (*Random)(nil)

// RandomConfig holds the probabilities that drive the random policy.
type RandomConfig struct {
	Mulligan float64 // chance of sending a hand back
	Land     float64 // chance of playing an available land
	Spell    float64 // chance of starting to cast this decision
	Attack   float64 // chance of attacking with each candidate
	Block    float64 // chance of blocking each attacker
}

// DefaultRandomConfig returns the stock probabilities.
func DefaultRandomConfig() RandomConfig {
	return RandomConfig{
		Mulligan: 0.8,
		Land:     1.0,
		Spell:    0.75,
		Attack:   0.75,
		Block:    0.75,
	}
}

// Validate checks every probability lies in [0, 1].
func (c RandomConfig) Validate() error {
	for name, p := range map[string]float64{
		"mulligan": c.Mulligan,
		"land":     c.Land,
		"spell":    c.Spell,
		"attack":   c.Attack,
		"block":    c.Block,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("random player %s probability %v outside [0, 1]", name, p)
		}
	}
	return nil
}

// Random plays by a fixed priority list with random gates: declare combat
// when it can, otherwise tap mana, play a land and cast a creature, and
// otherwise move to the next step. A Random is not safe for concurrent use;
// give every seat its own.
type Random struct {
	cfg          RandomConfig
	rng          *rand.Rand
	castingSpell bool
}

func NewRandom(rng *rand.Rand, cfg RandomConfig) *Random {
	return &Random{cfg: cfg, rng: rng}
}

func (r *Random) MulliganHand(_ context.Context, _ *state.GameState, _ int) (bool, error) {
	return r.rng.Float64() <= r.cfg.Mulligan, nil
}

func (r *Random) GetAction(ctx context.Context, view *state.GameState, seat int, actions []rules.Action) (rules.Action, error) {
	if len(actions) == 0 {
		return rules.Action{}, core.ErrNoLegalActions
	}

	if hasKind(actions, rules.KindDeclareAttackers) {
		attackers, err := r.ChooseAttackers(ctx, view, seat, rules.EligibleAttackers(view))
		if err != nil {
			return rules.Action{}, err
		}
		if a, ok := rules.Find(actions, rules.AttackKey(attackers)); ok {
			return a, nil
		}
	}

	if hasKind(actions, rules.KindDeclareBlockers) {
		if a, ok, err := r.declareBlockers(ctx, view, seat, actions); err != nil || ok {
			return a, err
		}
	}

	if r.castingSpell || r.rng.Float64() <= r.cfg.Spell {
		r.castingSpell = true
		if a, ok := firstOfKind(actions, rules.KindActivateAbility); ok {
			return a, nil
		}
		if a, ok := firstOfKind(actions, rules.KindPlayLand); ok && r.rng.Float64() <= r.cfg.Land {
			return a, nil
		}
		r.castingSpell = false
		if a, ok := firstOfKind(actions, rules.KindCastCreature); ok {
			return a, nil
		}
	}

	if a, ok := firstOfKind(actions, rules.KindAdvanceStep); ok {
		return a, nil
	}
	return actions[r.rng.Intn(len(actions))], nil
}

// declareBlockers builds a block through ChooseBlockers and OrderBlockers
// and matches it against the generated declarations.
func (r *Random) declareBlockers(ctx context.Context, view *state.GameState, seat int, actions []rules.Action) (rules.Action, bool, error) {
	blockers := rules.EligibleBlockers(view)
	if len(blockers) == 0 {
		a, ok := rules.Find(actions, "noblock")
		return a, ok, nil
	}

	assignment := state.NewAssignment(view.Combat.Attackers())
	if err := r.ChooseBlockers(ctx, view, seat, assignment, blockers); err != nil {
		return rules.Action{}, false, err
	}
	if err := r.OrderBlockers(ctx, view, seat, assignment); err != nil {
		return rules.Action{}, false, err
	}
	a, ok := rules.Find(actions, rules.BlockKey(rules.CanonicalBlocks(assignment, blockers)))
	return a, ok, nil
}

// ChooseAttackers keeps each candidate with the attack probability.
func (r *Random) ChooseAttackers(_ context.Context, _ *state.GameState, _ int, candidates []core.CardID) ([]core.CardID, error) {
	var out []core.CardID
	for _, id := range candidates {
		if r.rng.Float64() <= r.cfg.Attack {
			out = append(out, id)
		}
	}
	return out, nil
}

// ChooseBlockers decides per attacker whether to block it, then how many
// of the remaining candidates to send, drawn without replacement.
func (r *Random) ChooseBlockers(_ context.Context, _ *state.GameState, _ int, assignment state.Assignment, candidates []core.CardID) error {
	remaining := append([]core.CardID(nil), candidates...)
	for _, attacker := range assignment.Attackers() {
		if r.rng.Float64() > r.cfg.Block {
			continue
		}
		n := r.rng.Intn(len(remaining) + 1)
		for i := 0; i < n; i++ {
			j := r.rng.Intn(len(remaining))
			assignment.AddBlocker(attacker, remaining[j])
			remaining = append(remaining[:j], remaining[j+1:]...)
		}
	}
	return nil
}

// OrderBlockers keeps the order the blockers were chosen in.
func (r *Random) OrderBlockers(_ context.Context, _ *state.GameState, _ int, _ state.Assignment) error {
	return nil
}

func hasKind(actions []rules.Action, kind rules.ActionKind) bool {
	_, ok := firstOfKind(actions, kind)
	return ok
}

func firstOfKind(actions []rules.Action, kind rules.ActionKind) (rules.Action, bool) {
	for _, a := range actions {
		if a.Kind == kind {
			return a, true
		}
	}
	return rules.Action{}, false
}
