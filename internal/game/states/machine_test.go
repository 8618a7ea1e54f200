package states

import (
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/events"
)

func TestGamePhase_String(t *testing.T) {
	tests := []struct {
		phase    GamePhase
		expected string
	}{
		{PhaseInitializing, "Initializing"},
		{PhaseSetup, "Setup"},
		{PhaseRunning, "Running"},
		{PhaseEnding, "Ending"},
		{PhaseEnded, "Ended"},
		{PhaseError, "Error"},
		{GamePhase(999), "Unknown(999)"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.phase.String())
		})
	}
}

func TestParsePhase(t *testing.T) {
	for phase, name := range phaseNames {
		got, err := ParsePhase(name)
		require.NoError(t, err)
		assert.Equal(t, phase, got)
	}
	_, err := ParsePhase("Lobby")
	assert.Error(t, err)
}

func TestGamePhase_Properties(t *testing.T) {
	assert.True(t, PhaseEnded.IsTerminal())
	assert.True(t, PhaseError.IsTerminal())
	assert.False(t, PhaseRunning.IsTerminal())

	assert.True(t, PhaseRunning.CanReceiveActions())
	assert.False(t, PhaseSetup.CanReceiveActions())
	assert.False(t, PhaseEnded.CanReceiveActions())
}

func TestGamePhase_Transitions(t *testing.T) {
	tests := []struct {
		from    GamePhase
		allowed []GamePhase
	}{
		{PhaseInitializing, []GamePhase{PhaseSetup, PhaseError}},
		{PhaseSetup, []GamePhase{PhaseRunning, PhaseError}},
		{PhaseRunning, []GamePhase{PhaseEnding, PhaseError}},
		{PhaseEnding, []GamePhase{PhaseEnded, PhaseError}},
		{PhaseEnded, []GamePhase{}},
		{PhaseError, []GamePhase{}},
	}

	all := []GamePhase{PhaseInitializing, PhaseSetup, PhaseRunning, PhaseEnding, PhaseEnded, PhaseError}
	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.AllowedTransitions())
			for _, target := range all {
				want := false
				for _, a := range tt.allowed {
					want = want || a == target
				}
				assert.Equal(t, want, tt.from.CanTransitionTo(target), "%s -> %s", tt.from, target)
			}
		})
	}
}

func newMachine(t *testing.T, bus events.Publisher) *StateMachine {
	t.Helper()
	return NewStateMachine(NewGameContext("test-game", 2, zerolog.Nop()), bus)
}

func TestStateMachine_FullLifecycle(t *testing.T) {
	bus := events.NewEventBus(zerolog.Nop())
	var mu sync.Mutex
	var seen []*events.StateTransitionEvent
	bus.SubscribeFunc(events.TypeStateTransition, func(e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, e.(*events.StateTransitionEvent))
	})

	sm := newMachine(t, bus)
	assert.Equal(t, PhaseInitializing, sm.CurrentPhase())

	require.NoError(t, sm.TransitionTo(PhaseSetup, "decks loaded"))
	require.NoError(t, sm.TransitionTo(PhaseRunning, "mulligans done"))
	assert.False(t, sm.GetContext().StartTime.IsZero())

	err := sm.TransitionTo(PhaseEnding, "no result")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "winner or a draw")
	assert.Equal(t, PhaseRunning, sm.CurrentPhase())

	sm.GetContext().Winner = 1
	require.NoError(t, sm.TransitionTo(PhaseEnding, "seat 0 lost"))
	require.NoError(t, sm.TransitionTo(PhaseEnded, "results recorded"))
	assert.True(t, sm.CurrentPhase().IsTerminal())
	assert.GreaterOrEqual(t, sm.GetContext().GetElapsedTime().Nanoseconds(), int64(0))

	history := sm.GetHistory()
	require.Len(t, history, 4)
	assert.Equal(t, PhaseInitializing, history[0].From)
	assert.Equal(t, PhaseEnded, history[3].To)
	assert.Equal(t, "seat 0 lost", history[2].Reason)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 4)
	assert.Equal(t, "Initializing", seen[0].FromPhase)
	assert.Equal(t, "Setup", seen[0].ToPhase)
	assert.Equal(t, "test-game", seen[0].GameID())
}

func TestStateMachine_InvalidTransition(t *testing.T) {
	sm := newMachine(t, nil)
	err := sm.TransitionTo(PhaseRunning, "skip setup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid transition from Initializing to Running")
	assert.False(t, sm.CanTransitionTo(PhaseEnded))
	assert.True(t, sm.CanTransitionTo(PhaseSetup))
	assert.Empty(t, sm.GetHistory())
}

func TestStateMachine_SetupRequiresTwoSeats(t *testing.T) {
	sm := NewStateMachine(NewGameContext("g", 3, zerolog.Nop()), nil)
	err := sm.TransitionTo(PhaseSetup, "start")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 2 seats")
}

func TestStateMachine_Draw(t *testing.T) {
	sm := newMachine(t, nil)
	require.NoError(t, sm.TransitionTo(PhaseSetup, ""))
	require.NoError(t, sm.TransitionTo(PhaseRunning, ""))
	sm.GetContext().Draw = true
	require.NoError(t, sm.TransitionTo(PhaseEnding, "action limit"))
	assert.Equal(t, core.NoSeat, sm.GetContext().Winner)
}

func TestStateMachine_Fail(t *testing.T) {
	sm := newMachine(t, nil)
	require.NoError(t, sm.TransitionTo(PhaseSetup, ""))

	boom := errors.New("library invariant broken")
	require.NoError(t, sm.Fail(boom))
	assert.Equal(t, PhaseError, sm.CurrentPhase())
	assert.Equal(t, boom, sm.GetContext().Error)
	assert.Error(t, sm.Fail(boom), "error is terminal")
}

type failingEnter struct{ *RunningState }

func (failingEnter) Enter(*GameContext) error { return errors.New("no clock") }

func TestStateMachine_EnterFailureRollsBack(t *testing.T) {
	sm := newMachine(t, nil)
	sm.RegisterState(failingEnter{&RunningState{}})
	require.NoError(t, sm.TransitionTo(PhaseSetup, ""))

	err := sm.TransitionTo(PhaseRunning, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to enter state Running")
	assert.Equal(t, PhaseSetup, sm.CurrentPhase())
	assert.Len(t, sm.GetHistory(), 1)
}

func TestStateMachine_ErrorStateNeedsError(t *testing.T) {
	sm := newMachine(t, nil)
	err := sm.TransitionTo(PhaseError, "no cause")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires an error")
}
