package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/mana"
)

var (
	testLand = &CardDef{Name: "Mountain", TypeLine: "Basic Land - Mountain"}
	testBear = &CardDef{Name: "Bear", TypeLine: "Creature - Bear", Cost: mana.MustParseCost("1G"), Power: 2, Toughness: 2}
)

func newTestState(t *testing.T) *GameState {
	t.Helper()
	gs, err := New(2, 20, 1)
	require.NoError(t, err)
	for seat := 0; seat < 2; seat++ {
		for i := 0; i < 5; i++ {
			def := testLand
			if i%2 == 1 {
				def = testBear
			}
			gs.Seats[seat].Library = append(gs.Seats[seat].Library, gs.AddCard(def, seat))
		}
	}
	return gs
}

func TestNew(t *testing.T) {
	gs, err := New(2, 20, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, gs.Turn)
	assert.Equal(t, core.StepMain1, gs.Step)
	assert.Equal(t, 20, gs.Seats[0].Life)
	assert.Equal(t, 20, gs.Seats[1].Life)
	assert.Equal(t, 1, gs.LandsLeftToPlay)
	assert.Nil(t, gs.Combat)

	for _, seats := range []int{0, 1, 3, 4} {
		_, err := New(seats, 20, 1)
		assert.ErrorIs(t, err, core.ErrUnsupportedOperation, "seats=%d", seats)
	}
}

func TestAddCard(t *testing.T) {
	gs, _ := New(2, 20, 1)
	a := gs.AddCard(testLand, 0)
	b := gs.AddCard(testBear, 1)

	assert.Equal(t, core.CardID(0), a)
	assert.Equal(t, core.CardID(1), b)
	assert.Equal(t, 1, gs.Card(b).Owner)
	assert.Equal(t, 1, gs.Card(b).Controller)
	assert.Equal(t, NeverControlled, gs.Card(b).ControlTimestamp)
	assert.False(t, gs.Card(b).Tapped())
}

func TestDraw(t *testing.T) {
	gs := newTestState(t)
	top := gs.Seats[0].Library[0]

	require.NoError(t, gs.Draw(0))
	assert.Equal(t, []core.CardID{top}, gs.Seats[0].Hand)
	assert.Len(t, gs.Seats[0].Library, 4)

	require.NoError(t, gs.DrawN(0, 4))
	assert.Empty(t, gs.Seats[0].Library)

	err := gs.Draw(0)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSeatLoss)
	var sl *core.SeatLossError
	require.True(t, errors.As(err, &sl))
	assert.Equal(t, 0, sl.Seat)
	assert.True(t, gs.Seats[0].Lost)
	assert.Equal(t, []int{1}, gs.LiveSeats())
}

func TestBattlefieldMoves(t *testing.T) {
	gs := newTestState(t)
	gs.Turn = 3
	require.NoError(t, gs.Draw(1))
	require.NoError(t, gs.Draw(1))
	bear := gs.Seats[1].Hand[1]

	require.True(t, gs.RemoveFromHand(1, bear))
	assert.False(t, gs.RemoveFromHand(1, bear))
	gs.PutOntoBattlefield(bear, 1)

	assert.True(t, gs.OnBattlefield(bear))
	assert.Equal(t, 3, gs.Card(bear).ControlTimestamp)
	assert.Equal(t, []core.CardID{bear}, gs.Creatures(1))
	assert.Empty(t, gs.Creatures(0))

	gs.Card(bear).Tap()
	gs.Card(bear).Damage = 2
	assert.True(t, gs.Card(bear).LethallyDamaged())

	require.True(t, gs.MoveToGraveyard(bear))
	assert.False(t, gs.OnBattlefield(bear))
	assert.Equal(t, []core.CardID{bear}, gs.Seats[1].Graveyard)
	assert.False(t, gs.Card(bear).Tapped())
	assert.Zero(t, gs.Card(bear).Damage)
	assert.Equal(t, NeverControlled, gs.Card(bear).ControlTimestamp)
	assert.False(t, gs.MoveToGraveyard(bear))
}

func TestStack(t *testing.T) {
	gs := newTestState(t)
	_, ok := gs.Pop()
	assert.False(t, ok)

	gs.Push(StackObject{Kind: StackCard, Card: 1, Description: "first"})
	gs.Push(StackObject{Kind: StackActivatedAbility, Card: 2, Description: "second"})

	top, ok := gs.Pop()
	require.True(t, ok)
	assert.Equal(t, "second", top.Description)
	top, ok = gs.Pop()
	require.True(t, ok)
	assert.Equal(t, "first", top.Description)
	assert.Empty(t, gs.Stack)
}

func TestCheckZones(t *testing.T) {
	gs := newTestState(t)
	require.NoError(t, gs.CheckZones())

	gs.Seats[0].Hand = []core.CardID{3, 3}
	err := gs.CheckZones()
	assert.ErrorIs(t, err, core.ErrInvariantViolation)

	gs.Seats[0].Hand = nil
	gs.Battlefield = []core.CardID{1, 2, 1}
	var inv *core.InvariantError
	require.True(t, errors.As(gs.CheckZones(), &inv))
	assert.Equal(t, "battlefield", inv.Zone)
	assert.Equal(t, core.CardID(1), inv.Card)
}

func TestAssignment(t *testing.T) {
	a := NewAssignment([]core.CardID{1, 2})
	assert.Equal(t, []core.CardID{1, 2}, a.Attackers())
	assert.True(t, a.AddBlocker(2, 7))
	assert.True(t, a.AddBlocker(2, 8))
	assert.False(t, a.AddBlocker(9, 7))

	assert.Equal(t, []core.CardID{7, 8}, a.Blockers(2))
	assert.Empty(t, a.Blockers(1))
	assert.True(t, a.IsBlocking(8))
	assert.False(t, a.IsBlocking(1))

	c := a.Clone()
	assert.True(t, a.Equal(c))
	c.AddBlocker(1, 9)
	assert.False(t, a.Equal(c))
	assert.Empty(t, a.Blockers(1))

	var none Assignment
	assert.Nil(t, none.Clone())
	assert.False(t, none.Equal(Assignment{}))
}

func TestEqualAndKey(t *testing.T) {
	a := newTestState(t)
	b := a.Clone()
	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())

	b.Card(0).Tap()
	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Key(), b.Key())

	c := a.Clone()
	c.Seats[1].Pool.Add(mana.Red, 1)
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Key(), c.Key())

	d := a.Clone()
	d.Step = d.Step.Next()
	assert.False(t, a.Equal(d))
}

// Clones must be fully isolated from their source, including the card
// arena, across arbitrary sequences of mutations.
func TestCloneIsolation(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))

	for trial := 0; trial < 200; trial++ {
		original := newTestState(t)
		for i := 0; i < rng.Intn(6); i++ {
			_ = original.Draw(rng.Intn(2))
		}
		if len(original.Seats[0].Hand) > 0 {
			id := original.Seats[0].Hand[0]
			original.RemoveFromHand(0, id)
			original.PutOntoBattlefield(id, 0)
		}
		original.Combat = NewAssignment(original.Battlefield)

		snapshot := original.Clone()
		clone := original.Clone()

		mutations := 1 + rng.Intn(8)
		for m := 0; m < mutations; m++ {
			switch rng.Intn(8) {
			case 0:
				_ = clone.Draw(rng.Intn(2))
			case 1:
				for _, id := range clone.Battlefield {
					clone.Card(id).Tap()
					clone.Card(id).Damage++
				}
			case 2:
				clone.Seats[rng.Intn(2)].Life -= 1 + rng.Intn(5)
			case 3:
				clone.Seats[rng.Intn(2)].Pool.Add(mana.Green, 2)
			case 4:
				clone.Turn++
				clone.Step = clone.Step.Next()
				clone.AttackersDeclared = true
			case 5:
				if len(clone.Battlefield) > 0 {
					clone.MoveToGraveyard(clone.Battlefield[0])
				}
			case 6:
				if len(clone.Combat) > 0 {
					clone.Combat.AddBlocker(clone.Combat[0].Attacker, 99)
				}
			case 7:
				clone.Push(StackObject{Kind: StackCard, Card: 0})
				if len(clone.Seats[1].Hand) > 0 {
					clone.Seats[1].Hand[0] = 42
				}
			}
		}

		require.True(t, original.Equal(snapshot), "trial %d: original changed by clone mutation", trial)
		assert.Equal(t, snapshot.Key(), original.Key())
	}
}
