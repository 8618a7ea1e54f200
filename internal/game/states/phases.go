package states

import "fmt"

// GamePhase represents the lifecycle phase of a game
type GamePhase int

const (
	// PhaseInitializing - Game object creation
	PhaseInitializing GamePhase = iota

	// PhaseSetup - Decks built, libraries shuffled, mulligans taken
	PhaseSetup

	// PhaseRunning - Active gameplay
	PhaseRunning

	// PhaseEnding - Winner determination
	PhaseEnding

	// PhaseEnded - Final state
	PhaseEnded

	// PhaseError - Unrecoverable failure
	PhaseError
)

var phaseNames = map[GamePhase]string{
	PhaseInitializing: "Initializing",
	PhaseSetup:        "Setup",
	PhaseRunning:      "Running",
	PhaseEnding:       "Ending",
	PhaseEnded:        "Ended",
	PhaseError:        "Error",
}

// String returns the string representation of a GamePhase
func (p GamePhase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", p)
}

// IsTerminal returns true if the phase represents a terminal state
func (p GamePhase) IsTerminal() bool {
	return p == PhaseEnded || p == PhaseError
}

// CanReceiveActions returns true if the game can process seat actions in this phase
func (p GamePhase) CanReceiveActions() bool {
	return p == PhaseRunning
}

// AllowedTransitions returns the valid phases this phase can transition to
func (p GamePhase) AllowedTransitions() []GamePhase {
	switch p {
	case PhaseInitializing:
		return []GamePhase{PhaseSetup, PhaseError}
	case PhaseSetup:
		return []GamePhase{PhaseRunning, PhaseError}
	case PhaseRunning:
		return []GamePhase{PhaseEnding, PhaseError}
	case PhaseEnding:
		return []GamePhase{PhaseEnded, PhaseError}
	default:
		return []GamePhase{}
	}
}

// CanTransitionTo checks if a transition from this phase to the target phase is allowed
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, phase := range p.AllowedTransitions() {
		if phase == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	for phase, name := range phaseNames {
		if name == s {
			return phase, nil
		}
	}
	return PhaseInitializing, fmt.Errorf("unknown game phase %q", s)
}
