package events

import (
	"time"
)

// Event is anything published on a game's bus.
type Event interface {
	Type() string
	Timestamp() time.Time
	GameID() string
}

// BaseEvent carries the fields every event shares. Embed it.
type BaseEvent struct {
	EventType string    `json:"type"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
}

func (e BaseEvent) Type() string         { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }
func (e BaseEvent) GameID() string       { return e.Game }

// EventHandler is a function subscriber.
type EventHandler func(Event)

// Subscriber receives the events it is interested in, synchronously and in
// publish order.
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// EventMetadata locates an event in the game. Seat is always encoded since
// seat 0 is a real seat; core.NoSeat marks events with no seat.
type EventMetadata struct {
	Seat int    `json:"seat"`
	Turn int    `json:"turn,omitempty"`
	Step string `json:"step,omitempty"`
}

// Publisher is the publishing half of a Bus.
type Publisher interface {
	Publish(Event)
}

// Bus fans events out to subscribers.
type Bus interface {
	Publisher
	Subscribe(Subscriber)
	Unsubscribe(subscriberID string)
	// SubscribeFunc returns an ID for UnsubscribeFunc. Pass AllEvents to
	// receive every type.
	SubscribeFunc(eventType string, handler EventHandler) string
	UnsubscribeFunc(handlerID string)
}

// AllEvents matches every event type in SubscribeFunc.
const AllEvents = "*"
