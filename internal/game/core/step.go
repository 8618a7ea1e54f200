package core

import "fmt"

// Step is one of the twelve steps of a turn, in cyclic order.
type Step int

const (
	StepUntap Step = iota
	StepUpkeep
	StepDraw
	StepMain1
	StepBeginCombat
	StepDeclareAttackers
	StepDeclareBlockers
	StepCombatDamage
	StepEndCombat
	StepMain2
	StepEnd
	StepCleanup
)

// StepCount is the number of steps in one turn.
const StepCount = 12

var stepNames = map[Step]string{
	StepUntap:            "untap",
	StepUpkeep:           "upkeep",
	StepDraw:             "draw",
	StepMain1:            "main1",
	StepBeginCombat:      "beginCombat",
	StepDeclareAttackers: "declareAtk",
	StepDeclareBlockers:  "declareBlk",
	StepCombatDamage:     "damage",
	StepEndCombat:        "endCombat",
	StepMain2:            "main2",
	StepEnd:              "end",
	StepCleanup:          "cleanup",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(s))
}

// Next returns the step that follows s, wrapping cleanup back to untap.
func (s Step) Next() Step {
	return (s + 1) % StepCount
}

// IsDecisionPoint reports whether the step stops and waits for a seat to act.
// All other steps run their fixed effect and advance on their own.
func (s Step) IsDecisionPoint() bool {
	switch s {
	case StepMain1, StepMain2, StepDeclareAttackers, StepDeclareBlockers:
		return true
	default:
		return false
	}
}

// IsMain reports whether lands and creatures may be played in this step.
func (s Step) IsMain() bool {
	return s == StepMain1 || s == StepMain2
}

// ParseStep converts a step name back to a Step.
func ParseStep(name string) (Step, error) {
	for step, n := range stepNames {
		if n == name {
			return step, nil
		}
	}
	return StepUntap, fmt.Errorf("unknown step %q", name)
}

// CardID is a stable index into a game state's card arena.
type CardID int

// NoSeat marks the absence of a seat, e.g. the winner of a drawn game.
const NoSeat = -1
