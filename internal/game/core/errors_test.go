package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAction string

func (f fakeAction) Describe() string { return string(f) }

func TestWrapGameStateError(t *testing.T) {
	tests := []struct {
		name     string
		turn     int
		op       string
		err      error
		expected string
	}{
		{name: "nil error returns nil", turn: 1, op: "draw", err: nil},
		{name: "game over", turn: 100, op: "action", err: ErrGameOver, expected: "game turn 100 [action]: game is over"},
		{name: "illegal action", turn: 3, op: "main1", err: ErrIllegalAction, expected: "game turn 3 [main1]: illegal action"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapGameStateError(tt.turn, tt.op, tt.err)
			if tt.err == nil {
				assert.Nil(t, wrapped)
				return
			}
			require.NotNil(t, wrapped)
			assert.Equal(t, tt.expected, wrapped.Error())
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}
}

func TestWrapSeatError(t *testing.T) {
	assert.Nil(t, WrapSeatError(0, "mulligan", nil))

	err := WrapSeatError(1, "get action", ErrNoLegalActions)
	assert.Equal(t, "seat 1 get action: no legal actions", err.Error())
	assert.ErrorIs(t, err, ErrNoLegalActions)
}

func TestWrapActionError(t *testing.T) {
	assert.Nil(t, WrapActionError(fakeAction("x"), nil))

	err := WrapActionError(fakeAction("Cast Goblin Piker"), ErrIllegalAction)
	assert.Equal(t, `action "Cast Goblin Piker": illegal action`, err.Error())
	assert.ErrorIs(t, err, ErrIllegalAction)

	err = WrapActionError(nil, ErrGameOver)
	assert.Equal(t, "action: game is over", err.Error())
}

func TestSeatLossError(t *testing.T) {
	var err error = &SeatLossError{Seat: 1, Reason: "drew from empty library"}

	assert.ErrorIs(t, err, ErrSeatLoss)
	assert.NotErrorIs(t, err, ErrInvariantViolation)
	assert.Equal(t, "seat 1 lost: drew from empty library", err.Error())

	wrapped := fmt.Errorf("advance: %w", err)
	var sl *SeatLossError
	require.True(t, errors.As(wrapped, &sl))
	assert.Equal(t, 1, sl.Seat)
}

func TestSeatLosses(t *testing.T) {
	assert.Nil(t, SeatLosses(nil))
	assert.Empty(t, SeatLosses(ErrGameOver))

	joined := errors.Join(
		&SeatLossError{Seat: 0, Reason: "a"},
		fmt.Errorf("wrapped: %w", &SeatLossError{Seat: 1, Reason: "b"}),
	)
	losses := SeatLosses(joined)
	require.Len(t, losses, 2)
	assert.Equal(t, 0, losses[0].Seat)
	assert.Equal(t, 1, losses[1].Seat)
}

func TestInvariantError(t *testing.T) {
	err := WrapGameStateError(4, "sba", &InvariantError{Zone: "battlefield", Card: 7})
	assert.ErrorIs(t, err, ErrInvariantViolation)
	assert.Contains(t, err.Error(), "duplicate card 7 in battlefield")
}

func TestStep(t *testing.T) {
	t.Run("cycle", func(t *testing.T) {
		s := StepMain1
		for i := 0; i < StepCount; i++ {
			s = s.Next()
		}
		assert.Equal(t, StepMain1, s)
		assert.Equal(t, StepUntap, StepCleanup.Next())
	})

	t.Run("decision points", func(t *testing.T) {
		var decisions []Step
		for s := StepUntap; s <= StepCleanup; s++ {
			if s.IsDecisionPoint() {
				decisions = append(decisions, s)
			}
		}
		assert.Equal(t, []Step{StepMain1, StepDeclareAttackers, StepDeclareBlockers, StepMain2}, decisions)
	})

	t.Run("names", func(t *testing.T) {
		assert.Equal(t, "declareAtk", StepDeclareAttackers.String())
		assert.Equal(t, "Unknown(42)", Step(42).String())
		parsed, err := ParseStep("damage")
		require.NoError(t, err)
		assert.Equal(t, StepCombatDamage, parsed)
		_, err = ParseStep("nope")
		assert.Error(t, err)
	})
}
