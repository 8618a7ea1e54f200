package match

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ManaSearch/internal/game"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/mcts"
	"github.com/mitchelldurbincs/ManaSearch/internal/player"
)

// Suggestion is the planner's choice for the first decision of a dealt game.
type Suggestion struct {
	GameID string
	Seat   int
	Action rules.Action
	Stats  mcts.Stats
}

// PlanOpening deals a game from decklists and seed, with both seats keeping
// their opening hands, and searches the decision of the seat holding
// priority. The same seed always deals the same opening.
func (r *Runner) PlanOpening(ctx context.Context, decklists [2]string, seed uint64, budget time.Duration) (Suggestion, error) {
	spec := r.withDefaults(Spec{Decklists: decklists, Seed: seed, Budget: budget})

	cfg := r.cfg.Game
	if cfg.StartingLife == 0 {
		cfg = game.DefaultGameConfig()
	}
	cfg.GameID = spec.ID
	cfg.Players = []game.Player{player.NewScripted(), player.NewScripted()}
	cfg.Decklists = spec.Decklists[:]
	cfg.Rng = rand.New(rand.NewSource(spec.Seed))
	cfg.Logger = r.logger.With().Str("match_id", spec.ID).Logger()

	engine, err := game.NewEngine(ctx, cfg)
	if err != nil {
		return Suggestion{}, fmt.Errorf("deal %s: %w", spec.ID, err)
	}
	root := engine.GameState()

	action, stats, err := r.newPlanner(spec.Seed, spec.Budget, cfg.Logger).Plan(ctx, root, spec.Budget)
	if err != nil {
		return Suggestion{}, fmt.Errorf("plan %s: %w", spec.ID, err)
	}
	return Suggestion{GameID: spec.ID, Seat: root.Priority, Action: action, Stats: stats}, nil
}
