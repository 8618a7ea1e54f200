package mcts

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/processor"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// Planner chooses an action for the seat holding priority by Monte Carlo
// Tree Search with UCB1 selection and uniformly random rollouts. A Planner
// is safe for concurrent use; every Plan call builds its own tree.
type Planner struct {
	logger        zerolog.Logger
	budget        time.Duration
	exploration   float64
	rolloutCap    int
	seed          uint64
	maxIterations int
	metrics       *Metrics

	searches atomic.Uint64
}

func New(logger zerolog.Logger, options ...Option) *Planner {
	p := &Planner{ // Default values
		logger:      logger.With().Str("component", "MCTSPlanner").Logger(),
		budget:      DefaultBudget,
		exploration: DefaultExploration,
		rolloutCap:  DefaultRolloutCap,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

// search holds everything one Plan call mutates. Only the worker goroutine
// touches it until the worker has returned.
type search struct {
	p         *Planner
	root      *node
	cache     *actionCache
	rng       *rand.Rand
	processor *processor.ActionProcessor
	metrics   *collector
	stop      atomic.Bool
}

// Plan searches from root for at most budget (the planner's default budget
// if budget <= 0) and returns the most promising legal action for
// root.Priority. root is never modified. If ctx ends the search early the
// best action so far is returned together with ctx.Err().
func (p *Planner) Plan(ctx context.Context, root *state.GameState, budget time.Duration) (rules.Action, Stats, error) {
	if budget <= 0 {
		budget = p.budget
	}
	metrics := &collector{}
	metrics.Start()

	if over, _ := rules.GameOver(root); over {
		return rules.Action{}, Stats{}, core.ErrGameOver
	}

	s := &search{
		p:         p,
		root:      newNode(nil, rules.Action{}, root.Clone()),
		cache:     newActionCache(metrics),
		rng:       rand.New(rand.NewSource(p.nextSeed())),
		processor: newSimulationProcessor(),
		metrics:   metrics,
	}

	actions, err := s.cache.actions(s.root.state)
	if err != nil {
		return rules.Action{}, Stats{}, err
	}
	switch len(actions) {
	case 0:
		return rules.Action{}, Stats{}, core.ErrNoLegalActions
	case 1:
		stats := metrics.Complete()
		stats.RootChildren = 1
		return actions[0], stats, nil
	}

	done := make(chan error, 1)
	go func() {
		done <- s.run()
	}()

	timer := time.NewTimer(budget)
	defer timer.Stop()

	var searchErr, ctxErr error
	timedOut := false
	select {
	case <-timer.C:
		timedOut = true
		s.stop.Store(true)
		searchErr = <-done
	case <-ctx.Done():
		ctxErr = ctx.Err()
		s.stop.Store(true)
		searchErr = <-done
	case searchErr = <-done:
	}

	stats := metrics.Complete()
	stats.RootChildren = len(s.root.children)
	stats.TimedOut = timedOut
	if p.metrics != nil {
		p.metrics.record(stats)
	}

	if searchErr != nil {
		return rules.Action{}, stats, searchErr
	}

	chosen := actions[0]
	if best := s.root.mostVisited(); best != nil {
		chosen = best.action
	}

	p.logger.Debug().
		Int("seat", root.Priority).
		Int("turn", root.Turn).
		Str("step", root.Step.String()).
		Str("action", chosen.Key).
		Int64("iterations", stats.Iterations).
		Int("root_children", stats.RootChildren).
		Int("cached_states", s.cache.len()).
		Dur("duration", stats.Duration).
		Bool("timed_out", timedOut).
		Msg("Search finished")

	return chosen, stats, ctxErr
}

// newSimulationProcessor returns a processor that never logs; search loops
// apply far too many actions to log each one.
func newSimulationProcessor() *processor.ActionProcessor {
	return processor.NewActionProcessor(zerolog.Nop())
}

func (p *Planner) nextSeed() uint64 {
	n := p.searches.Add(1)
	if p.seed == 0 {
		return uint64(time.Now().UnixNano()) + n
	}
	return p.seed + n
}

// run iterates until stopped or until the iteration limit is reached. The
// stop flag is checked once per iteration and between rollout actions.
func (s *search) run() error {
	for !s.stop.Load() {
		if s.p.maxIterations > 0 && s.metrics.iterations.Load() >= int64(s.p.maxIterations) {
			return nil
		}
		if err := s.iterate(); err != nil {
			return err
		}
	}
	return nil
}

func (s *search) iterate() error {
	leaf, err := s.selectThenExpand()
	if err != nil {
		return err
	}
	winner, finished, err := s.rollout(leaf.state)
	if err != nil {
		return err
	}
	if !finished {
		// Interrupted by the stop flag; the partial playout is discarded.
		return nil
	}
	leaf.backup(reward(winner, leaf.toMove))
	s.metrics.AddIteration()
	return nil
}

// selectThenExpand walks down fully expanded nodes by UCB1 and expands the
// first node with an untried action. Terminal nodes are returned as is.
func (s *search) selectThenExpand() (*node, error) {
	n := s.root
	for !n.terminal {
		actions, err := s.cache.actions(n.state)
		if err != nil {
			return nil, err
		}
		if len(n.children) < len(actions) {
			return s.expand(n, actions)
		}
		n = n.bestChild(s.p.exploration)
	}
	return n, nil
}

// expand adds a child for the first action, in generation order, that no
// child represents yet.
func (s *search) expand(n *node, actions []rules.Action) (*node, error) {
	for _, a := range actions {
		if _, ok := n.tried[a.Key]; ok {
			continue
		}
		next := n.state.Clone()
		if err := s.apply(next, a); err != nil {
			return nil, fmt.Errorf("expand %s: %w", a.Key, err)
		}
		child := newNode(n, a, next)
		n.tried[a.Key] = struct{}{}
		n.children = append(n.children, child)
		return child, nil
	}
	return nil, fmt.Errorf("node at turn %d %s has no untried action: %w", n.state.Turn, n.state.Step, core.ErrInvariantViolation)
}

// rollout plays gs's game out on a clone with uniformly random actions. It
// reports the winner (core.NoSeat for a draw, including a game cut off by
// the rollout cap) and whether the playout ran to completion.
func (s *search) rollout(gs *state.GameState) (int, bool, error) {
	sim := gs.Clone()
	for depth := 0; ; depth++ {
		if over, winner := rules.GameOver(sim); over {
			s.metrics.AddFullPlayout()
			return winner, true, nil
		}
		if depth >= s.p.rolloutCap {
			return core.NoSeat, true, nil
		}
		if s.stop.Load() {
			return core.NoSeat, false, nil
		}
		a, err := rules.RandomAction(sim, sim.Priority, s.rng)
		if err != nil {
			return core.NoSeat, false, err
		}
		if err := s.apply(sim, a); err != nil {
			return core.NoSeat, false, fmt.Errorf("rollout %s: %w", a.Key, err)
		}
	}
}

// apply advances gs by one action the way the engine does: apply, resolve
// the stack, then state-based actions. Seat losses are part of the result.
func (s *search) apply(gs *state.GameState, a rules.Action) error {
	if _, err := s.processor.ProcessAction(context.Background(), gs, a); err != nil {
		return err
	}
	_, err := rules.ApplyStateBasedActions(gs)
	return err
}

// reward scores a finished playout for seat: +1 for a win, -1 for a loss
// and 0 for a draw.
func reward(winner, seat int) float64 {
	switch winner {
	case core.NoSeat:
		return 0
	case seat:
		return 1
	default:
		return -1
	}
}
