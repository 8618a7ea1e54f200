package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/cards"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

const (
	// RedDeck is a small mono-red list
	RedDeck = "12 Mountain\n8 Goblin Piker"
	// LandDeck holds nothing but lands
	LandDeck = "20 Mountain"
)

// NewTestGame builds an unshuffled two-seat game at main1 of turn 1 with
// seat 0 active. Each seat's library follows its decklist order and each
// seat draws handSize cards.
func NewTestGame(t testing.TB, deckA, deckB string, handSize int) *state.GameState {
	t.Helper()
	gs, err := state.New(2, 20, 1)
	require.NoError(t, err)

	reg := cards.DefaultRegistry()
	for seat, text := range []string{deckA, deckB} {
		deck, err := cards.ParseDecklist(text)
		require.NoError(t, err)
		require.NoError(t, cards.BuildLibrary(reg, gs, seat, deck))
		require.NoError(t, gs.DrawN(seat, handSize))
	}
	return gs
}

// AddPermanent puts a new card named name onto the battlefield under seat,
// old enough to attack this turn.
func AddPermanent(t testing.TB, gs *state.GameState, name string, seat int) core.CardID {
	t.Helper()
	def, err := cards.DefaultRegistry().Lookup(name)
	require.NoError(t, err)
	id := gs.AddCard(def, seat)
	gs.PutOntoBattlefield(id, seat)
	gs.Card(id).ControlTimestamp = gs.Turn - 1
	return id
}

// AddToHand puts a new card named name into seat's hand.
func AddToHand(t testing.TB, gs *state.GameState, name string, seat int) core.CardID {
	t.Helper()
	def, err := cards.DefaultRegistry().Lookup(name)
	require.NoError(t, err)
	id := gs.AddCard(def, seat)
	gs.Seats[seat].Hand = append(gs.Seats[seat].Hand, id)
	return id
}
