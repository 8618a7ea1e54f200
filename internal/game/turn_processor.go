package game

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/processor"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// TurnProcessor handles the orchestration of a single decision: asking the
// seat holding priority for an action, applying it and publishing what
// changed
type TurnProcessor struct {
	engine *Engine
	logger zerolog.Logger
}

// NewTurnProcessor creates a new turn processor
func NewTurnProcessor(engine *Engine) *TurnProcessor {
	return &TurnProcessor{
		engine: engine,
		logger: engine.logger,
	}
}

// snapshot holds the fields compared before and after an action to decide
// which events to publish
type snapshot struct {
	turn      int
	step      core.Step
	life      []int
	attackers int
	defender  int
}

func takeSnapshot(gs *state.GameState) snapshot {
	life := make([]int, len(gs.Seats))
	for i, s := range gs.Seats {
		life[i] = s.Life
	}
	return snapshot{
		turn:      gs.Turn,
		step:      gs.Step,
		life:      life,
		attackers: len(gs.Combat),
		defender:  gs.Defender(),
	}
}

// ProcessDecision executes one decision by the seat holding priority
func (tp *TurnProcessor) ProcessDecision(ctx context.Context) error {
	e := tp.engine
	gs := e.gs

	if err := tp.validateGameState(); err != nil {
		return err
	}

	seat := gs.Priority
	turnLogger := tp.logger.With().Int("turn", gs.Turn).Str("step", gs.Step.String()).Int("seat", seat).Logger()

	actions, err := rules.LegalActions(gs, seat)
	if err != nil {
		return core.WrapGameStateError(gs.Turn, "legal actions", err)
	}
	if len(actions) == 0 {
		return core.WrapSeatError(seat, "get action", core.ErrNoLegalActions)
	}

	choice, err := e.players[seat].GetAction(ctx, gs.Clone(), seat, actions)
	if err != nil {
		return core.WrapSeatError(seat, "get action", err)
	}

	action, ok := rules.Find(actions, choice.Key)
	if !ok {
		turnLogger.Warn().Str("action", choice.Key).Msg("Seat chose an action that is not legal")
		e.eventBus.Publish(events.NewActionRejectedEvent(e.gameID, seat, choice.Key, "not a legal action", gs.Turn))
		return core.WrapSeatError(seat, "get action", fmt.Errorf("%q: %w", choice.Key, core.ErrIllegalAction))
	}

	before := takeSnapshot(gs)
	outcome, err := e.actionProcessor.ProcessAction(ctx, gs, action)
	if err != nil {
		return core.WrapGameStateError(gs.Turn, "process action", err)
	}
	e.actions++

	turnLogger.Debug().Str("action", action.Key).Msg("Action applied")
	tp.publishOutcome(before, action, outcome)
	return nil
}

// validateGameState ensures the game can receive actions
func (tp *TurnProcessor) validateGameState() error {
	currentPhase := tp.engine.stateMachine.CurrentPhase()
	if !currentPhase.CanReceiveActions() {
		tp.logger.Warn().
			Str("current_phase", currentPhase.String()).
			Msg("Attempted to step game in phase that cannot receive actions")
		return fmt.Errorf("game is in %s phase and cannot receive actions", currentPhase)
	}
	if tp.engine.gameOver {
		return core.WrapGameStateError(tp.engine.gs.Turn, "step", core.ErrGameOver)
	}
	return nil
}

func (tp *TurnProcessor) publishOutcome(before snapshot, action rules.Action, outcome processor.Outcome) {
	e := tp.engine
	gs := e.gs
	bus := e.eventBus

	bus.Publish(events.NewActionAppliedEvent(e.gameID, action.Seat, action.Kind.String(), action.Key,
		action.Description, before.step.String(), before.turn))

	for _, obj := range outcome.Resolved {
		bus.Publish(events.NewStackResolvedEvent(e.gameID, obj.Kind.String(), int(obj.Card), obj.Controller,
			obj.Description, gs.Turn))
	}

	if before.attackers > 0 && gs.Seats[before.defender].Life != before.life[before.defender] {
		bus.Publish(events.NewCombatDamageEvent(e.gameID, before.defender, before.life[before.defender],
			gs.Seats[before.defender].Life, before.attackers, before.turn))
	}

	for _, seat := range outcome.Lost {
		tp.logger.Info().Int("seat", seat).Msg("Seat drew from an empty library")
		bus.Publish(events.NewSeatLostEvent(e.gameID, seat, "drew from an empty library", gs.Turn))
	}

	if gs.Step != before.step || gs.Turn != before.turn {
		bus.Publish(events.NewStepChangedEvent(e.gameID, before.step.String(), gs.Step.String(), gs.Turn))
	}
	if gs.Turn != before.turn {
		bus.Publish(events.NewTurnStartedEvent(e.gameID, gs.Turn, gs.Active))
	}
}
