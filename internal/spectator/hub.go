package spectator

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512

	clientBuffer    = 256
	broadcastBuffer = 1024
)

// Message is the JSON frame sent to spectators for every game event.
type Message struct {
	Type      string          `json:"type"`
	GameID    string          `json:"game_id"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data,omitempty"`
}

type envelope struct {
	gameID  string
	payload []byte
}

type client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	gameID string // empty follows every game
}

// Hub fans game events out to websocket spectators. A spectator connecting
// with ?game_id=<id> only receives that game's events. Publishing never
// blocks the game: when the hub or a client falls behind, messages are
// dropped and counted.
type Hub struct {
	logger   zerolog.Logger
	upgrader websocket.Upgrader

	clients    map[*client]bool
	broadcast  chan envelope
	register   chan *client
	unregister chan *client
	done       chan struct{}

	connected atomic.Int32
	dropped   atomic.Int64
}

var _ events.Subscriber = (*Hub)(nil)

func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		logger: logger.With().Str("component", "SpectatorHub").Logger(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:    make(map[*client]bool),
		broadcast:  make(chan envelope, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run owns the client set until ctx is done, then disconnects everyone.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.remove(c)
			}
			h.logger.Info().Msg("Spectator hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = true
			h.connected.Add(1)
			h.logger.Info().
				Str("client_id", c.id).
				Str("game_id", c.gameID).
				Msg("Spectator connected")

		case c := <-h.unregister:
			if h.clients[c] {
				h.remove(c)
				h.logger.Info().Str("client_id", c.id).Msg("Spectator disconnected")
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				if c.gameID != "" && c.gameID != msg.gameID {
					continue
				}
				select {
				case c.send <- msg.payload:
				default:
					h.dropped.Add(1)
					h.logger.Warn().Str("client_id", c.id).Msg("Spectator too slow, disconnecting")
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.connected.Add(-1)
}

// Clients reports the number of connected spectators.
func (h *Hub) Clients() int { return int(h.connected.Load()) }

// Dropped reports messages that could not be delivered.
func (h *Hub) Dropped() int64 { return h.dropped.Load() }

// Broadcast queues msg for every spectator following its game.
func (h *Hub) Broadcast(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error().Err(err).Str("type", msg.Type).Msg("Failed to marshal spectator message")
		return
	}
	select {
	case h.broadcast <- envelope{gameID: msg.GameID, payload: payload}:
	default:
		h.dropped.Add(1)
	}
}

// MessageFromEvent wraps an event in the spectator frame.
func MessageFromEvent(e events.Event) (Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return Message{}, err
	}
	return Message{
		Type:      e.Type(),
		GameID:    e.GameID(),
		Timestamp: e.Timestamp(),
		Data:      data,
	}, nil
}

func (h *Hub) ID() string { return "spectator_hub" }

func (h *Hub) InterestedIn(string) bool { return true }

func (h *Hub) HandleEvent(e events.Event) {
	msg, err := MessageFromEvent(e)
	if err != nil {
		h.logger.Error().Err(err).Str("type", e.Type()).Msg("Failed to encode event")
		return
	}
	h.Broadcast(msg)
}

// Attach subscribes the hub to a game's event bus.
func (h *Hub) Attach(bus events.Bus) {
	bus.Subscribe(h)
}

// ServeHTTP upgrades the request to a websocket and streams events to it.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}

	c := &client{
		id:     uuid.New().String(),
		conn:   conn,
		send:   make(chan []byte, clientBuffer),
		gameID: r.URL.Query().Get("game_id"),
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// readPump only watches for the connection closing; spectators have nothing
// to say.
func (h *Hub) readPump(c *client) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
