package mcts

import (
	"math"
	"time"
)

const (
	DefaultBudget     = 500 * time.Millisecond
	DefaultRolloutCap = 20000
)

// DefaultExploration is the UCB1 exploration constant Cp = 1/√2.
var DefaultExploration = 1 / math.Sqrt2

type Option func(p *Planner)

// WithBudget sets the wall-clock budget used when Plan is called with a
// non-positive budget.
func WithBudget(budget time.Duration) Option {
	return func(p *Planner) {
		if budget > 0 {
			p.budget = budget
		}
	}
}

func WithExploration(cp float64) Option {
	return func(p *Planner) {
		if cp > 0 {
			p.exploration = cp
		}
	}
}

// WithRolloutCap bounds the number of actions in one simulated game. A
// rollout that hits the cap counts as a draw.
func WithRolloutCap(actions int) Option {
	return func(p *Planner) {
		if actions > 0 {
			p.rolloutCap = actions
		}
	}
}

// WithSeed makes searches reproducible. Zero keeps the time-based seed.
func WithSeed(seed uint64) Option {
	return func(p *Planner) {
		p.seed = seed
	}
}

// WithMaxIterations stops a search after this many iterations even if
// budget remains.
func WithMaxIterations(iterations int) Option {
	return func(p *Planner) {
		if iterations > 0 {
			p.maxIterations = iterations
		}
	}
}

// WithMetrics accumulates every search's stats into m.
func WithMetrics(m *Metrics) Option {
	return func(p *Planner) {
		p.metrics = m
	}
}
