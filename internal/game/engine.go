package game

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/processor"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/states"
)

// Engine drives one game: it asks the seat holding priority for an action,
// applies it, resolves the stack and checks for a winner, one decision at a
// time.
type Engine struct {
	gs       *state.GameState
	players  []Player
	rng      *rand.Rand
	gameOver bool
	winner   int
	logger   zerolog.Logger

	actionProcessor *processor.ActionProcessor
	winCondition    *rules.WinConditionChecker
	turnProcessor   *TurnProcessor

	eventBus     *events.EventBus
	gameID       string
	stateMachine *states.StateMachine

	maxActions int
	actions    int
}

// Result summarizes a finished game. Winner is core.NoSeat for a draw.
type Result struct {
	GameID   string
	Winner   int
	Turns    int
	Duration time.Duration
	Actions  int
}

// NewEngine creates a game engine ready to run
func NewEngine(ctx context.Context, cfg GameConfig) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// Run plays the game to completion. It returns ctx.Err() if ctx is done
// first and a wrapped ErrInvariantViolation if the state is corrupted; seat
// losses are part of normal play and never returned.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	for !e.gameOver {
		select {
		case <-ctx.Done():
			e.logger.Warn().Err(ctx.Err()).Int("turn", e.gs.Turn).Msg("Game cancelled")
			return e.result(), ctx.Err()
		default:
		}

		if err := e.Step(ctx); err != nil {
			if !e.stateMachine.CurrentPhase().IsTerminal() {
				_ = e.stateMachine.Fail(err)
			}
			return e.result(), err
		}
	}
	return e.result(), nil
}

// Step runs one iteration of the game loop: state-based actions, the win
// check and, if the game goes on, one decision by the seat holding priority.
func (e *Engine) Step(ctx context.Context) error {
	if e.gameOver {
		return core.ErrGameOver
	}

	if e.actions >= e.maxActions {
		e.logger.Warn().Int("max_actions", e.maxActions).Msg("Action limit reached, ending game as a draw")
		return e.endGame(core.NoSeat, "action limit reached")
	}

	if err := e.applyStateBasedActions(); err != nil {
		return core.WrapGameStateError(e.gs.Turn, "state-based actions", err)
	}

	if over, winner := e.winCondition.CheckGameOver(e.gs); over {
		reason := "one seat left"
		if winner == core.NoSeat {
			reason = "no seats left"
		}
		return e.endGame(winner, reason)
	}

	return e.turnProcessor.ProcessDecision(ctx)
}

func (e *Engine) applyStateBasedActions() error {
	res, err := rules.ApplyStateBasedActions(e.gs)
	for _, seat := range res.Lost {
		e.logger.Info().Int("seat", seat).Int("life", e.gs.Seats[seat].Life).Msg("Seat lost at zero life")
		e.eventBus.Publish(events.NewSeatLostEvent(e.gameID, seat, "life total reached zero", e.gs.Turn))
	}
	for _, id := range res.Destroyed {
		c := e.gs.Card(id)
		e.eventBus.Publish(events.NewCreatureDestroyedEvent(e.gameID, int(id), c.Def.Name, c.Owner, e.gs.Turn))
	}
	return err
}

func (e *Engine) endGame(winner int, reason string) error {
	e.gameOver = true
	e.winner = winner

	gameContext := e.stateMachine.GetContext()
	gameContext.Winner = winner
	gameContext.Draw = winner == core.NoSeat

	if err := e.stateMachine.TransitionTo(states.PhaseEnding, reason); err != nil {
		return err
	}
	if err := e.stateMachine.TransitionTo(states.PhaseEnded, "Results recorded"); err != nil {
		return err
	}

	e.eventBus.Publish(events.NewGameEndedEvent(e.gameID, winner, gameContext.GetElapsedTime(), e.gs.Turn, e.actions))
	return nil
}

func (e *Engine) result() Result {
	return Result{
		GameID:   e.gameID,
		Winner:   e.winner,
		Turns:    e.gs.Turn,
		Duration: e.stateMachine.GetContext().GetElapsedTime(),
		Actions:  e.actions,
	}
}

func (e *Engine) shuffleLibrary(seat int) {
	lib := e.gs.Seats[seat].Library
	e.rng.Shuffle(len(lib), func(i, j int) {
		lib[i], lib[j] = lib[j], lib[i]
	})
}

// Public accessors

// GameState returns a clone of the live state
func (e *Engine) GameState() *state.GameState { return e.gs.Clone() }
func (e *Engine) IsGameOver() bool             { return e.gameOver }
func (e *Engine) GameID() string               { return e.gameID }
func (e *Engine) EventBus() *events.EventBus   { return e.eventBus }
func (e *Engine) Actions() int                 { return e.actions }

// CurrentPhase returns the current lifecycle phase
func (e *Engine) CurrentPhase() states.GamePhase {
	return e.stateMachine.CurrentPhase()
}

// GetWinner returns the winning seat, or core.NoSeat if the game isn't over
// or ended in a draw
func (e *Engine) GetWinner() int {
	return e.winner
}

func (e *Engine) String() string {
	return fmt.Sprintf("game %s turn %d %s active=%d priority=%d life=%d/%d",
		e.gameID, e.gs.Turn, e.gs.Step, e.gs.Active, e.gs.Priority, e.gs.Seats[0].Life, e.gs.Seats[1].Life)
}
