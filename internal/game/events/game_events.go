package events

import (
	"time"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
)

// Event type constants
const (
	TypeGameStarted       = "game.started"
	TypeGameEnded         = "game.ended"
	TypeTurnStarted       = "turn.started"
	TypeStepChanged       = "step.changed"
	TypeActionApplied     = "action.applied"
	TypeActionRejected    = "action.rejected"
	TypeStackResolved     = "stack.resolved"
	TypeSeatLost          = "seat.lost"
	TypeCreatureDestroyed = "creature.destroyed"
	TypeCombatDamage      = "combat.damage"
	TypeStateTransition   = "state.transition"
)

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Game:      gameID,
	}
}

// GameStartedEvent is published when a new game begins
type GameStartedEvent struct {
	BaseEvent
	Metadata    EventMetadata `json:"metadata"`
	NumSeats    int           `json:"num_seats"`
	FirstSeat   int           `json:"first_seat"`
	LibrarySize []int         `json:"library_size"`
}

// NewGameStartedEvent creates a new GameStartedEvent
func NewGameStartedEvent(gameID string, numSeats, firstSeat int, librarySize []int) *GameStartedEvent {
	return &GameStartedEvent{
		BaseEvent:   newBase(TypeGameStarted, gameID),
		Metadata:    EventMetadata{Seat: firstSeat},
		NumSeats:    numSeats,
		FirstSeat:   firstSeat,
		LibrarySize: librarySize,
	}
}

// GameEndedEvent is published when a game ends. Winner is -1 for a draw.
type GameEndedEvent struct {
	BaseEvent
	Metadata  EventMetadata `json:"metadata"`
	Winner    int           `json:"winner"`
	Duration  time.Duration `json:"duration"`
	FinalTurn int           `json:"final_turn"`
	Actions   int           `json:"actions"`
}

// NewGameEndedEvent creates a new GameEndedEvent
func NewGameEndedEvent(gameID string, winner int, duration time.Duration, finalTurn, actions int) *GameEndedEvent {
	return &GameEndedEvent{
		BaseEvent: newBase(TypeGameEnded, gameID),
		Metadata:  EventMetadata{Seat: winner, Turn: finalTurn},
		Winner:    winner,
		Duration:  duration,
		FinalTurn: finalTurn,
		Actions:   actions,
	}
}

// TurnStartedEvent is published when the turn counter advances
type TurnStartedEvent struct {
	BaseEvent
	Metadata   EventMetadata `json:"metadata"`
	TurnNumber int           `json:"turn_number"`
	ActiveSeat int           `json:"active_seat"`
}

// NewTurnStartedEvent creates a new TurnStartedEvent
func NewTurnStartedEvent(gameID string, turn, activeSeat int) *TurnStartedEvent {
	return &TurnStartedEvent{
		BaseEvent:  newBase(TypeTurnStarted, gameID),
		Metadata:   EventMetadata{Seat: activeSeat, Turn: turn},
		TurnNumber: turn,
		ActiveSeat: activeSeat,
	}
}

// StepChangedEvent is published when an action leaves the game in a
// different step
type StepChangedEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	From     string        `json:"from"`
	To       string        `json:"to"`
}

// NewStepChangedEvent creates a new StepChangedEvent
func NewStepChangedEvent(gameID, from, to string, turn int) *StepChangedEvent {
	return &StepChangedEvent{
		BaseEvent: newBase(TypeStepChanged, gameID),
		Metadata:  EventMetadata{Seat: core.NoSeat, Turn: turn, Step: to},
		From:      from,
		To:        to,
	}
}

// ActionAppliedEvent is published after a seat's action is applied
type ActionAppliedEvent struct {
	BaseEvent
	Metadata    EventMetadata `json:"metadata"`
	Seat        int           `json:"seat"`
	Kind        string        `json:"kind"`
	Key         string        `json:"key"`
	Description string        `json:"description"`
	Step        string        `json:"step"`
}

// NewActionAppliedEvent creates a new ActionAppliedEvent
func NewActionAppliedEvent(gameID string, seat int, kind, key, description, step string, turn int) *ActionAppliedEvent {
	return &ActionAppliedEvent{
		BaseEvent:   newBase(TypeActionApplied, gameID),
		Metadata:    EventMetadata{Seat: seat, Turn: turn},
		Seat:        seat,
		Kind:        kind,
		Key:         key,
		Description: description,
		Step:        step,
	}
}

// ActionRejectedEvent is published when a seat returns an action that is
// not currently legal
type ActionRejectedEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	Seat     int           `json:"seat"`
	Key      string        `json:"key"`
	Reason   string        `json:"reason"`
}

// NewActionRejectedEvent creates a new ActionRejectedEvent
func NewActionRejectedEvent(gameID string, seat int, key, reason string, turn int) *ActionRejectedEvent {
	return &ActionRejectedEvent{
		BaseEvent: newBase(TypeActionRejected, gameID),
		Metadata:  EventMetadata{Seat: seat, Turn: turn},
		Seat:      seat,
		Key:       key,
		Reason:    reason,
	}
}

// StackResolvedEvent is published for every stack object that resolves
type StackResolvedEvent struct {
	BaseEvent
	Metadata    EventMetadata `json:"metadata"`
	Kind        string        `json:"kind"`
	Card        int           `json:"card"`
	Controller  int           `json:"controller"`
	Description string        `json:"description"`
}

// NewStackResolvedEvent creates a new StackResolvedEvent
func NewStackResolvedEvent(gameID, kind string, card, controller int, description string, turn int) *StackResolvedEvent {
	return &StackResolvedEvent{
		BaseEvent:   newBase(TypeStackResolved, gameID),
		Metadata:    EventMetadata{Seat: controller, Turn: turn},
		Kind:        kind,
		Card:        card,
		Controller:  controller,
		Description: description,
	}
}

// SeatLostEvent is published when a seat drops out of the game
type SeatLostEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	Seat     int           `json:"seat"`
	Reason   string        `json:"reason"`
}

// NewSeatLostEvent creates a new SeatLostEvent
func NewSeatLostEvent(gameID string, seat int, reason string, turn int) *SeatLostEvent {
	return &SeatLostEvent{
		BaseEvent: newBase(TypeSeatLost, gameID),
		Metadata:  EventMetadata{Seat: seat, Turn: turn},
		Seat:      seat,
		Reason:    reason,
	}
}

// CreatureDestroyedEvent is published when a creature dies to lethal damage
type CreatureDestroyedEvent struct {
	BaseEvent
	Metadata EventMetadata `json:"metadata"`
	Card     int           `json:"card"`
	Name     string        `json:"name"`
	Owner    int           `json:"owner"`
}

// NewCreatureDestroyedEvent creates a new CreatureDestroyedEvent
func NewCreatureDestroyedEvent(gameID string, card int, name string, owner, turn int) *CreatureDestroyedEvent {
	return &CreatureDestroyedEvent{
		BaseEvent: newBase(TypeCreatureDestroyed, gameID),
		Metadata:  EventMetadata{Seat: owner, Turn: turn},
		Card:      card,
		Name:      name,
		Owner:     owner,
	}
}

// CombatDamageEvent is published when combat damage changes life totals
type CombatDamageEvent struct {
	BaseEvent
	Metadata   EventMetadata `json:"metadata"`
	Defender   int           `json:"defender"`
	LifeBefore int           `json:"life_before"`
	LifeAfter  int           `json:"life_after"`
	Attackers  int           `json:"attackers"`
}

// NewCombatDamageEvent creates a new CombatDamageEvent
func NewCombatDamageEvent(gameID string, defender, lifeBefore, lifeAfter, attackers, turn int) *CombatDamageEvent {
	return &CombatDamageEvent{
		BaseEvent:  newBase(TypeCombatDamage, gameID),
		Metadata:   EventMetadata{Seat: defender, Turn: turn},
		Defender:   defender,
		LifeBefore: lifeBefore,
		LifeAfter:  lifeAfter,
		Attackers:  attackers,
	}
}

// StateTransitionEvent is published when the game state machine transitions between phases
type StateTransitionEvent struct {
	BaseEvent
	FromPhase string `json:"from_phase"`
	ToPhase   string `json:"to_phase"`
	Reason    string `json:"reason"`
}

// NewStateTransitionEvent creates a new StateTransitionEvent
func NewStateTransitionEvent(gameID, fromPhase, toPhase, reason string) *StateTransitionEvent {
	return &StateTransitionEvent{
		BaseEvent: newBase(TypeStateTransition, gameID),
		FromPhase: fromPhase,
		ToPhase:   toPhase,
		Reason:    reason,
	}
}
