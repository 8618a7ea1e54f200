package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/cards"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/processor"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/states"
)

// EngineInitializer handles the setup of a game engine: seating, decks,
// shuffles and mulligans
type EngineInitializer struct {
	config GameConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg GameConfig) *EngineInitializer {
	logger := cfg.Logger.With().Str("component", "GameEngine").Logger()
	return &EngineInitializer{
		config: cfg,
		logger: logger,
	}
}

// Initialize creates an engine whose game is ready to run: it is in
// PhaseRunning at the first main step of turn 1.
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled or timed out during initial phase")
		return nil, ctx.Err()
	default:
	}

	ei.setupDefaults()

	if len(ei.config.Players) != 2 || len(ei.config.Decklists) != 2 {
		return nil, fmt.Errorf("game needs 2 players and 2 decklists, got %d and %d: %w",
			len(ei.config.Players), len(ei.config.Decklists), core.ErrUnsupportedOperation)
	}

	gs, err := state.New(len(ei.config.Players), ei.config.StartingLife, ei.config.LandsPerTurn)
	if err != nil {
		return nil, err
	}

	engine := ei.createEngine(gs)

	if err := engine.stateMachine.TransitionTo(states.PhaseSetup, "Engine initialized"); err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}

	if err := ei.performSetup(ctx, engine); err != nil {
		_ = engine.stateMachine.Fail(err)
		return nil, fmt.Errorf("game setup failed: %w", err)
	}

	if err := engine.stateMachine.TransitionTo(states.PhaseRunning, "Game setup complete"); err != nil {
		return nil, fmt.Errorf("state machine initialization failed: %w", err)
	}

	librarySizes := make([]int, len(gs.Seats))
	for i, s := range gs.Seats {
		librarySizes[i] = len(s.Library)
	}
	engine.eventBus.Publish(events.NewGameStartedEvent(engine.gameID, len(gs.Seats), gs.Active, librarySizes))

	ei.logger.Info().
		Str("game_id", engine.gameID).
		Int("first_seat", gs.Active).
		Ints("library_sizes", librarySizes).
		Msg("Engine created successfully")

	return engine, nil
}

// setupDefaults sets up default values for missing configuration
func (ei *EngineInitializer) setupDefaults() {
	defaults := DefaultGameConfig()
	cfg := &ei.config

	if cfg.Rng == nil {
		ei.logger.Debug().Msg("No RNG provided, creating new seeded RNG")
		cfg.Rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	if cfg.GameID == "" {
		cfg.GameID = uuid.New().String()
	}
	if cfg.Registry == nil {
		cfg.Registry = cards.DefaultRegistry()
	}
	if cfg.StartingLife <= 0 {
		cfg.StartingLife = defaults.StartingLife
	}
	if cfg.StartingHandSize <= 0 {
		cfg.StartingHandSize = defaults.StartingHandSize
	}
	if cfg.LandsPerTurn <= 0 {
		cfg.LandsPerTurn = defaults.LandsPerTurn
	}
	if cfg.MaxMulligans < 0 {
		cfg.MaxMulligans = 0
	}
	if cfg.MaxActions <= 0 {
		cfg.MaxActions = defaults.MaxActions
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBus(ei.logger)
	}
}

// createEngine creates the engine with all its components
func (ei *EngineInitializer) createEngine(gs *state.GameState) *Engine {
	gameLogger := ei.logger.With().Str("game_id", ei.config.GameID).Logger()
	gameContext := states.NewGameContext(ei.config.GameID, len(ei.config.Players), ei.logger)

	engine := &Engine{
		gs:              gs,
		players:         ei.config.Players,
		rng:             ei.config.Rng,
		logger:          gameLogger,
		actionProcessor: processor.NewActionProcessor(gameLogger),
		winCondition:    rules.NewWinConditionChecker(gameLogger),
		eventBus:        ei.config.EventBus,
		gameID:          ei.config.GameID,
		stateMachine:    states.NewStateMachine(gameContext, ei.config.EventBus),
		maxActions:      ei.config.MaxActions,
		winner:          core.NoSeat,
	}
	engine.turnProcessor = NewTurnProcessor(engine)
	return engine
}

// performSetup builds and shuffles the libraries, picks the first seat and
// runs the mulligan loop
func (ei *EngineInitializer) performSetup(ctx context.Context, engine *Engine) error {
	gs := engine.gs
	for seat, text := range ei.config.Decklists {
		deck, err := cards.ParseDecklist(text)
		if err != nil {
			return core.WrapSeatError(seat, "parse decklist", err)
		}
		if err := cards.BuildLibrary(ei.config.Registry, gs, seat, deck); err != nil {
			return core.WrapSeatError(seat, "build library", err)
		}
	}

	order := engine.rng.Perm(len(gs.Seats))
	gs.Active = order[0]
	gs.Priority = gs.Active

	for seat := range gs.Seats {
		engine.shuffleLibrary(seat)
	}

	seating := make([]int, len(order))
	copy(seating, order)
	return ei.mulligan(ctx, engine, seating)
}

// mulligan deals opening hands and lets seats mulligan in play order. Each
// round every seat that mulliganed shuffles its hand back and draws one card
// fewer than the round before. A seat that cannot draw its opening hand
// loses, which the engine's first loop iteration reports.
func (ei *EngineInitializer) mulligan(ctx context.Context, engine *Engine, seating []int) error {
	gs := engine.gs
	handSize := ei.config.StartingHandSize

	for _, seat := range seating {
		if err := ignoreSeatLoss(gs.DrawN(seat, handSize)); err != nil {
			return err
		}
	}

	notKept := seating
	for len(notKept) > 0 && handSize > 0 {
		var next []int
		for _, seat := range notKept {
			if gs.Seats[seat].Lost || gs.Seats[seat].Mulligans >= ei.config.MaxMulligans {
				continue
			}
			mull, err := engine.players[seat].MulliganHand(ctx, gs.Clone(), seat)
			if err != nil {
				return core.WrapSeatError(seat, "mulligan", err)
			}
			if !mull {
				continue
			}
			s := &gs.Seats[seat]
			s.Library = append(s.Library, s.Hand...)
			s.Hand = nil
			s.Mulligans++
			engine.shuffleLibrary(seat)
			next = append(next, seat)
		}

		handSize--
		for _, seat := range next {
			ei.logger.Debug().Int("seat", seat).Int("hand_size", handSize).Msg("Seat took a mulligan")
			if err := ignoreSeatLoss(gs.DrawN(seat, handSize)); err != nil {
				return err
			}
		}
		notKept = next
	}
	return nil
}

func ignoreSeatLoss(err error) error {
	if err == nil || errors.Is(err, core.ErrSeatLoss) {
		return nil
	}
	return err
}
