package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
)

// LoggerSubscriber logs events to structured logs
type LoggerSubscriber struct {
	id              string
	logger          zerolog.Logger
	logLevel        zerolog.Level
	eventTypeFilter map[string]bool // If non-nil, only log these event types
	devMode         bool            // If true, log full event details
}

// NewLoggerSubscriber creates a new logger subscriber
func NewLoggerSubscriber(id string, logger zerolog.Logger, logLevel zerolog.Level) *LoggerSubscriber {
	return &LoggerSubscriber{
		id:       id,
		logger:   logger.With().Str("subscriber", "event_logger").Logger(),
		logLevel: logLevel,
	}
}

// ID returns the subscriber's unique identifier
func (ls *LoggerSubscriber) ID() string {
	return ls.id
}

// SetEventFilter sets which event types to log (nil means log all)
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	if len(eventTypes) == 0 {
		ls.eventTypeFilter = nil
		return
	}

	ls.eventTypeFilter = make(map[string]bool)
	for _, eventType := range eventTypes {
		ls.eventTypeFilter[eventType] = true
	}
}

// SetDevMode enables or disables development mode logging
func (ls *LoggerSubscriber) SetDevMode(enabled bool) {
	ls.devMode = enabled
}

// InterestedIn returns true if the subscriber wants to receive this event type
func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	// If no filter is set, interested in all events
	if ls.eventTypeFilter == nil {
		return true
	}
	return ls.eventTypeFilter[eventType]
}

// HandleEvent processes an event by logging it
func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	eventLogger := ls.logger.With().
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Logger()

	// Create the base event log
	var logEvent *zerolog.Event
	switch ls.logLevel {
	case zerolog.DebugLevel:
		logEvent = eventLogger.Debug()
	case zerolog.InfoLevel:
		logEvent = eventLogger.Info()
	case zerolog.WarnLevel:
		logEvent = eventLogger.Warn()
	case zerolog.ErrorLevel:
		logEvent = eventLogger.Error()
	default:
		logEvent = eventLogger.Info()
	}

	// Add event-specific fields based on type
	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Int("num_seats", e.NumSeats).
			Int("first_seat", e.FirstSeat).
			Ints("library_size", e.LibrarySize)

	case *events.GameEndedEvent:
		logEvent.
			Int("winner", e.Winner).
			Dur("duration", e.Duration).
			Int("final_turn", e.FinalTurn).
			Int("actions", e.Actions)

	case *events.TurnStartedEvent:
		logEvent.
			Int("turn", e.TurnNumber).
			Int("active_seat", e.ActiveSeat)

	case *events.StepChangedEvent:
		logEvent.
			Int("turn", e.Metadata.Turn).
			Str("from", e.From).
			Str("to", e.To)

	case *events.ActionAppliedEvent:
		logEvent.
			Int("seat", e.Seat).
			Str("action_kind", e.Kind).
			Str("action", e.Description).
			Str("step", e.Step)

	case *events.ActionRejectedEvent:
		logEvent.
			Int("seat", e.Seat).
			Str("action", e.Key).
			Str("reason", e.Reason)

	case *events.StackResolvedEvent:
		logEvent.
			Str("kind", e.Kind).
			Int("card", e.Card).
			Int("controller", e.Controller).
			Str("object", e.Description)

	case *events.SeatLostEvent:
		logEvent.
			Int("seat", e.Seat).
			Str("reason", e.Reason)

	case *events.CreatureDestroyedEvent:
		logEvent.
			Int("card", e.Card).
			Str("name", e.Name).
			Int("owner", e.Owner)

	case *events.CombatDamageEvent:
		logEvent.
			Int("defender", e.Defender).
			Int("life_before", e.LifeBefore).
			Int("life_after", e.LifeAfter).
			Int("attackers", e.Attackers)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from_phase", e.FromPhase).
			Str("to_phase", e.ToPhase).
			Str("reason", e.Reason)
	}

	// In dev mode, also log the full event as JSON
	if ls.devMode {
		if jsonData, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", jsonData)
		}
	}

	// Send the log
	logEvent.Msg("Game event")
}
