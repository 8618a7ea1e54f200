package spectator

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
	"github.com/mitchelldurbincs/ManaSearch/internal/testutil"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(testutil.NopLogger())
	go hub.Run(ctx)

	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHubStreamsBusEvents(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	bus := events.NewEventBus(testutil.NopLogger())
	hub.Attach(bus)
	bus.Publish(events.NewTurnStartedEvent("g1", 3, 1))

	msg := readMessage(t, conn)
	assert.Equal(t, events.TypeTurnStarted, msg.Type)
	assert.Equal(t, "g1", msg.GameID)
	assert.False(t, msg.Timestamp.IsZero())

	var data struct {
		TurnNumber int `json:"turn_number"`
		ActiveSeat int `json:"active_seat"`
	}
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	assert.Equal(t, 3, data.TurnNumber)
	assert.Equal(t, 1, data.ActiveSeat)
}

func TestHubFiltersByGame(t *testing.T) {
	hub, srv := startHub(t)
	all := dial(t, srv, "")
	onlyG2 := dial(t, srv, "?game_id=g2")
	require.Eventually(t, func() bool { return hub.Clients() == 2 }, time.Second, 5*time.Millisecond)

	hub.HandleEvent(events.NewSeatLostEvent("g1", 0, "life", 4))
	hub.HandleEvent(events.NewGameEndedEvent("g2", 1, time.Second, 4, 80))

	assert.Equal(t, "g1", readMessage(t, all).GameID)
	assert.Equal(t, "g2", readMessage(t, all).GameID)

	msg := readMessage(t, onlyG2)
	assert.Equal(t, "g2", msg.GameID)
	assert.Equal(t, events.TypeGameEnded, msg.Type)
}

func TestHubUnregistersClosedClients(t *testing.T) {
	hub, srv := startHub(t)
	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestHubStopDisconnects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(testutil.NopLogger())
	go hub.Run(ctx)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn := dial(t, srv, "")
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection closes")
	assert.Equal(t, 0, hub.Clients())
}

func TestBroadcastWithoutRunDropsWhenFull(t *testing.T) {
	hub := NewHub(testutil.NopLogger())
	for i := 0; i < broadcastBuffer+5; i++ {
		hub.Broadcast(Message{Type: "x", GameID: "g"})
	}
	assert.Equal(t, int64(5), hub.Dropped())
}

func TestMessageFromEvent(t *testing.T) {
	e := events.NewActionAppliedEvent("g", 1, "play_land", "play:4", "play Mountain", "main1", 2)
	msg, err := MessageFromEvent(e)
	require.NoError(t, err)
	assert.Equal(t, events.TypeActionApplied, msg.Type)
	assert.Equal(t, "g", msg.GameID)
	assert.Contains(t, string(msg.Data), "play:4")
	assert.True(t, NewHub(testutil.NopLogger()).InterestedIn(events.TypeCombatDamage))
}
