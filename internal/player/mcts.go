package player

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ManaSearch/internal/game"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
	"github.com/mitchelldurbincs/ManaSearch/internal/mcts"
)

var _ game.Player = (*MCTS)(nil)

// MCTS picks every action with a planner search. Combat declarations are
// actions too, so the planner chooses attacks and blocks as well; the
// direct ChooseAttackers and ChooseBlockers answers are simple heuristics.
type MCTS struct {
	planner *mcts.Planner
	budget  time.Duration
	logger  zerolog.Logger

	mu    sync.Mutex
	last  mcts.Stats
	plans int
}

// NewMCTS wraps planner. A budget <= 0 uses the planner's default.
func NewMCTS(planner *mcts.Planner, budget time.Duration, logger zerolog.Logger) *MCTS {
	return &MCTS{
		planner: planner,
		budget:  budget,
		logger:  logger.With().Str("component", "MCTSPlayer").Logger(),
	}
}

// MulliganHand sends back a non-empty hand that holds no lands or only
// lands.
func (m *MCTS) MulliganHand(_ context.Context, view *state.GameState, seat int) (bool, error) {
	if !view.ValidSeat(seat) {
		return false, core.ErrInvalidSeat
	}
	hand := view.Seats[seat].Hand
	lands := 0
	for _, id := range hand {
		if view.Card(id).Def.IsLand() {
			lands++
		}
	}
	return len(hand) > 0 && (lands == 0 || lands == len(hand)), nil
}

func (m *MCTS) GetAction(ctx context.Context, view *state.GameState, seat int, actions []rules.Action) (rules.Action, error) {
	if len(actions) == 0 {
		return rules.Action{}, core.ErrNoLegalActions
	}
	if len(actions) == 1 {
		return actions[0], nil
	}
	if view.Priority != seat {
		return rules.Action{}, core.WrapSeatError(seat, "plan", core.ErrIllegalAction)
	}

	action, stats, err := m.planner.Plan(ctx, view, m.budget)

	m.mu.Lock()
	m.last = stats
	m.plans++
	m.mu.Unlock()

	if err != nil {
		return rules.Action{}, err
	}
	m.logger.Debug().
		Int("seat", seat).
		Str("action", action.Key).
		Int64("iterations", stats.Iterations).
		Msg("Planned action")
	return action, nil
}

// ChooseAttackers attacks with everything.
func (m *MCTS) ChooseAttackers(_ context.Context, _ *state.GameState, _ int, candidates []core.CardID) ([]core.CardID, error) {
	return append([]core.CardID(nil), candidates...), nil
}

// ChooseBlockers never blocks.
func (m *MCTS) ChooseBlockers(_ context.Context, _ *state.GameState, _ int, _ state.Assignment, _ []core.CardID) error {
	return nil
}

func (m *MCTS) OrderBlockers(_ context.Context, _ *state.GameState, _ int, _ state.Assignment) error {
	return nil
}

// LastStats returns the statistics of the most recent search.
func (m *MCTS) LastStats() mcts.Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Plans counts the searches run so far.
func (m *MCTS) Plans() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plans
}
