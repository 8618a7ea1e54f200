package processor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/cards"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

func newState(t *testing.T, decklist string) *state.GameState {
	t.Helper()
	gs, err := state.New(2, 20, 1)
	require.NoError(t, err)
	deck, err := cards.ParseDecklist(decklist)
	require.NoError(t, err)
	for seat := 0; seat < 2; seat++ {
		require.NoError(t, cards.BuildLibrary(cards.DefaultRegistry(), gs, seat, deck))
	}
	return gs
}

func find(t *testing.T, gs *state.GameState, key string) rules.Action {
	t.Helper()
	actions, err := rules.LegalActions(gs, gs.Priority)
	require.NoError(t, err)
	a, ok := rules.Find(actions, key)
	require.True(t, ok, "missing action %q", key)
	return a
}

func TestProcessActionResolvesStack(t *testing.T) {
	ap := NewActionProcessor(zerolog.Nop())
	gs := newState(t, "10 Mountain")
	reg := cards.DefaultRegistry()
	lions, err := reg.Lookup("Savannah Lions")
	require.NoError(t, err)
	plains, err := reg.Lookup("Plains")
	require.NoError(t, err)

	land := gs.AddCard(plains, 0)
	gs.PutOntoBattlefield(land, 0)
	cat := gs.AddCard(lions, 0)
	gs.Seats[0].Hand = append(gs.Seats[0].Hand, cat)

	_, err = ap.ProcessAction(context.Background(), gs, find(t, gs, fmt.Sprintf("ability:%d:0", land)))
	require.NoError(t, err)

	out, err := ap.ProcessAction(context.Background(), gs, find(t, gs, fmt.Sprintf("cast:%d", cat)))
	require.NoError(t, err)
	require.Len(t, out.Resolved, 1)
	assert.Equal(t, cat, out.Resolved[0].Card)
	assert.Empty(t, gs.Stack)
	assert.True(t, gs.OnBattlefield(cat))
}

func TestResolveStackIsLIFO(t *testing.T) {
	ap := NewActionProcessor(zerolog.Nop())
	gs := newState(t, "10 Mountain")
	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		gs.Push(state.StackObject{Description: name, Resolve: func(*state.GameState) error {
			order = append(order, name)
			return nil
		}})
	}

	resolved, err := ap.ResolveStack(gs)
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "second", "first"}, order)
	assert.Len(t, resolved, 3)

	boom := errors.New("boom")
	gs.Push(state.StackObject{Description: "bad", Resolve: func(*state.GameState) error { return boom }})
	_, err = ap.ResolveStack(gs)
	assert.ErrorIs(t, err, boom)
}

func TestProcessActionRecoversDeckOut(t *testing.T) {
	ap := NewActionProcessor(zerolog.Nop())
	gs := newState(t, "10 Mountain")
	gs.Seats[1].Library = nil

	out, err := ap.ProcessAction(context.Background(), gs, find(t, gs, "skip"))
	require.NoError(t, err)
	assert.Equal(t, []int{1}, out.Lost)
	assert.True(t, gs.Seats[1].Lost)
	assert.Equal(t, core.StepMain1, gs.Step)
}

func TestProcessActionRejectsIllegal(t *testing.T) {
	ap := NewActionProcessor(zerolog.Nop())
	gs := newState(t, "10 Mountain")

	_, err := ap.ProcessAction(context.Background(), gs, rules.Action{Kind: rules.KindPlayLand, Seat: 0, Card: 0, Key: "play:0"})
	assert.ErrorIs(t, err, core.ErrIllegalAction)

	_, err = ap.ProcessAction(context.Background(), gs, rules.Action{Seat: 5})
	assert.ErrorIs(t, err, core.ErrInvalidSeat)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ap.ProcessAction(ctx, gs, find(t, gs, "advance"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecoverSeatLoss(t *testing.T) {
	seats, err := recoverSeatLoss(nil)
	assert.Nil(t, seats)
	assert.NoError(t, err)

	loss := fmt.Errorf("action \"skip\": %w", errors.Join(&core.SeatLossError{Seat: 0, Reason: "deck"}))
	seats, err = recoverSeatLoss(loss)
	assert.Equal(t, []int{0}, seats)
	assert.NoError(t, err)

	mixed := errors.Join(&core.SeatLossError{Seat: 1, Reason: "deck"}, core.ErrInvariantViolation)
	seats, err = recoverSeatLoss(mixed)
	assert.Equal(t, []int{1}, seats)
	assert.ErrorIs(t, err, core.ErrInvariantViolation)
	assert.NotErrorIs(t, err, core.ErrSeatLoss)

	seats, err = recoverSeatLoss(core.ErrIllegalAction)
	assert.Empty(t, seats)
	assert.ErrorIs(t, err, core.ErrIllegalAction)
}
