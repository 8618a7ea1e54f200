package events

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

type funcHandler struct {
	id      string
	handler EventHandler
}

// EventBus is a synchronous event bus implementation
type EventBus struct {
	subscribers  map[string]Subscriber
	funcHandlers map[string][]funcHandler
	nextFuncID   int
	mu           sync.RWMutex
	logger       zerolog.Logger
}

// NewEventBus creates a new event bus instance
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{
		subscribers:  make(map[string]Subscriber),
		funcHandlers: make(map[string][]funcHandler),
		logger:       logger.With().Str("component", "event_bus").Logger(),
	}
}

// Subscribe adds a new subscriber to the event bus
func (eb *EventBus) Subscribe(subscriber Subscriber) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[subscriber.ID()] = subscriber
	eb.logger.Debug().
		Str("subscriber_id", subscriber.ID()).
		Msg("Subscriber added to event bus")
}

// Unsubscribe removes a subscriber from the event bus
func (eb *EventBus) Unsubscribe(subscriberID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	delete(eb.subscribers, subscriberID)
	eb.logger.Debug().
		Str("subscriber_id", subscriberID).
		Msg("Subscriber removed from event bus")
}

// SubscribeFunc adds a function handler for one event type, or for every
// event when eventType is AllEvents.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.nextFuncID++
	handlerID := fmt.Sprintf("%s_func_%d", eventType, eb.nextFuncID)
	eb.funcHandlers[eventType] = append(eb.funcHandlers[eventType], funcHandler{id: handlerID, handler: handler})
	eb.logger.Debug().
		Str("event_type", eventType).
		Str("handler_id", handlerID).
		Msg("Function handler added to event bus")

	return handlerID
}

// UnsubscribeFunc removes a function handler
func (eb *EventBus) UnsubscribeFunc(handlerID string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for eventType, handlers := range eb.funcHandlers {
		for i, h := range handlers {
			if h.id == handlerID {
				eb.funcHandlers[eventType] = append(handlers[:i:i], handlers[i+1:]...)
				return
			}
		}
	}
}

// Publish sends an event to all interested subscribers synchronously.
// Handlers run outside the bus lock, so they may subscribe or unsubscribe.
func (eb *EventBus) Publish(event Event) {
	eventType := event.Type()

	eb.mu.RLock()
	subs := make([]Subscriber, 0, len(eb.subscribers))
	for _, subscriber := range eb.subscribers {
		if subscriber.InterestedIn(eventType) {
			subs = append(subs, subscriber)
		}
	}
	handlers := append([]funcHandler(nil), eb.funcHandlers[eventType]...)
	handlers = append(handlers, eb.funcHandlers[AllEvents]...)
	eb.mu.RUnlock()

	eb.logger.Debug().
		Str("event_type", eventType).
		Str("game_id", event.GameID()).
		Time("timestamp", event.Timestamp()).
		Msg("Publishing event")

	for _, subscriber := range subs {
		eb.safely(eventType, subscriber.ID(), func() { subscriber.HandleEvent(event) })
	}
	for _, h := range handlers {
		eb.safely(eventType, h.id, func() { h.handler(event) })
	}
}

// safely runs fn, catching panics to prevent one handler from breaking others
func (eb *EventBus) safely(eventType, handlerID string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			eb.logger.Error().
				Str("handler_id", handlerID).
				Str("event_type", eventType).
				Interface("panic", r).
				Msg("Event handler panicked while handling event")
		}
	}()
	fn()
}

// GetSubscriberCount returns the number of subscribers for debugging
func (eb *EventBus) GetSubscriberCount() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.subscribers)
}

// GetFuncHandlerCount returns the number of function handlers for a specific event type
func (eb *EventBus) GetFuncHandlerCount(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.funcHandlers[eventType])
}
