package match

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"

	"github.com/mitchelldurbincs/ManaSearch/internal/game"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
	"github.com/mitchelldurbincs/ManaSearch/internal/mcts"
	"github.com/mitchelldurbincs/ManaSearch/internal/player"
)

const DefaultConcurrency = 4

// RunnerConfig configures how matches are played and where results go.
type RunnerConfig struct {
	// Concurrency bounds the number of games in flight
	Concurrency int

	// Store receives every record; defaults to a MemoryStore
	Store Store

	// Game holds the rules constants; players, decklists, RNG and bus are
	// filled in per match
	Game game.GameConfig

	Random player.RandomConfig

	// Search settings for MCTS seats
	Budget      time.Duration
	Exploration float64
	RolloutCap  int
	Metrics     *mcts.Metrics

	// Observe is called with each game's event bus before the game starts
	Observe func(matchID string, bus *events.EventBus)
}

// Runner plays matches, optionally many at once, and stores their records.
type Runner struct {
	cfg    RunnerConfig
	logger zerolog.Logger

	played atomic.Int64
	failed atomic.Int64
}

func NewRunner(cfg RunnerConfig, logger zerolog.Logger) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Budget <= 0 {
		cfg.Budget = mcts.DefaultBudget
	}
	if cfg.Random == (player.RandomConfig{}) {
		cfg.Random = player.DefaultRandomConfig()
	}
	return &Runner{
		cfg:    cfg,
		logger: logger.With().Str("component", "MatchRunner").Logger(),
	}
}

// Store returns the store records are saved to.
func (r *Runner) Store() Store { return r.cfg.Store }

// Played and Failed count matches since the runner was created.
func (r *Runner) Played() int64 { return r.played.Load() }
func (r *Runner) Failed() int64 { return r.failed.Load() }

// Play runs one match to completion and saves its record. A game that
// aborts is still recorded, with Error set, and its error returned.
func (r *Runner) Play(ctx context.Context, spec Spec) (Record, error) {
	spec = r.withDefaults(spec)
	matchLogger := r.logger.With().Str("match_id", spec.ID).Logger()

	players := make([]game.Player, 2)
	for seat, kind := range spec.Players {
		p, err := r.newPlayer(kind, spec, seat, matchLogger)
		if err != nil {
			return Record{}, err
		}
		players[seat] = p
	}

	cfg := r.cfg.Game
	if cfg.StartingLife == 0 {
		cfg = game.DefaultGameConfig()
	}
	cfg.GameID = spec.ID
	cfg.Players = players
	cfg.Decklists = spec.Decklists[:]
	cfg.Rng = rand.New(rand.NewSource(spec.Seed))
	cfg.Logger = matchLogger
	cfg.EventBus = events.NewEventBus(matchLogger)
	if r.cfg.Observe != nil {
		r.cfg.Observe(spec.ID, cfg.EventBus)
	}

	rec := Record{
		ID:        spec.ID,
		Decklists: spec.Decklists,
		Players:   spec.Players,
		Seed:      spec.Seed,
		Winner:    -1,
		StartedAt: time.Now(),
	}

	engine, err := game.NewEngine(ctx, cfg)
	if err != nil {
		r.failed.Add(1)
		return Record{}, fmt.Errorf("match %s: %w", spec.ID, err)
	}

	result, runErr := engine.Run(ctx)
	rec.Winner = result.Winner
	rec.Turns = result.Turns
	rec.Actions = result.Actions
	rec.Duration = result.Duration
	if runErr != nil {
		rec.Error = runErr.Error()
		r.failed.Add(1)
	} else {
		r.played.Add(1)
	}

	if err := r.cfg.Store.Save(ctx, rec); err != nil {
		return rec, fmt.Errorf("save match %s: %w", spec.ID, err)
	}

	matchLogger.Info().
		Int("winner", rec.Winner).
		Int("turns", rec.Turns).
		Int("actions", rec.Actions).
		Dur("duration", rec.Duration).
		Bool("finished", rec.Finished()).
		Msg("Match complete")

	if runErr != nil {
		return rec, fmt.Errorf("match %s: %w", spec.ID, runErr)
	}
	return rec, nil
}

// RunMatches plays every spec with at most Concurrency games at once. The
// records come back in spec order. The first error cancels the matches
// still running and is returned.
func (r *Runner) RunMatches(ctx context.Context, specs []Spec) ([]Record, error) {
	records := make([]Record, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			rec, err := r.Play(gctx, spec)
			records[i] = rec
			return err
		})
	}

	err := g.Wait()
	r.logger.Info().
		Int("matches", len(specs)).
		Int64("played", r.Played()).
		Int64("failed", r.Failed()).
		Msg("Match batch complete")
	return records, err
}

func (r *Runner) withDefaults(spec Spec) Spec {
	if spec.ID == "" {
		spec.ID = uuid.New().String()
	}
	if spec.Seed == 0 {
		spec.Seed = uint64(time.Now().UnixNano())
	}
	if spec.Budget <= 0 {
		spec.Budget = r.cfg.Budget
	}
	for i, kind := range spec.Players {
		if kind == "" {
			spec.Players[i] = PlayerRandom
		}
	}
	return spec
}

// newPlayer builds the seat's policy. Each seat gets its own seed derived
// from the match seed, so a match between random seats replays exactly.
func (r *Runner) newPlayer(kind PlayerKind, spec Spec, seat int, logger zerolog.Logger) (game.Player, error) {
	seed := spec.Seed*31 + uint64(seat) + 1
	switch kind {
	case PlayerRandom:
		return player.NewRandom(rand.New(rand.NewSource(seed)), r.cfg.Random), nil
	case PlayerMCTS:
		return player.NewMCTS(r.newPlanner(seed, spec.Budget, logger), spec.Budget, logger), nil
	}
	return nil, fmt.Errorf("seat %d %q: %w", seat, kind, ErrUnknownPlayer)
}

func (r *Runner) newPlanner(seed uint64, budget time.Duration, logger zerolog.Logger) *mcts.Planner {
	opts := []mcts.Option{mcts.WithSeed(seed), mcts.WithBudget(budget)}
	if r.cfg.Exploration > 0 {
		opts = append(opts, mcts.WithExploration(r.cfg.Exploration))
	}
	if r.cfg.RolloutCap > 0 {
		opts = append(opts, mcts.WithRolloutCap(r.cfg.RolloutCap))
	}
	if r.cfg.Metrics != nil {
		opts = append(opts, mcts.WithMetrics(r.cfg.Metrics))
	}
	return mcts.New(logger, opts...)
}
