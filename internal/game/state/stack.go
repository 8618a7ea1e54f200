package state

import "github.com/mitchelldurbincs/ManaSearch/internal/game/core"

// StackKind is the kind of object waiting on the stack.
type StackKind int

const (
	StackCard StackKind = iota
	StackActivatedAbility
	StackTriggeredAbility
)

func (k StackKind) String() string {
	switch k {
	case StackCard:
		return "card"
	case StackActivatedAbility:
		return "activated_ability"
	case StackTriggeredAbility:
		return "triggered_ability"
	default:
		return "unknown"
	}
}

// StackObject is a spell or ability awaiting resolution. Resolve must only
// capture identifiers, never pointers into a particular GameState, so the
// object stays valid across clones.
type StackObject struct {
	Kind        StackKind
	Card        core.CardID
	Controller  int
	Description string
	Resolve     func(gs *GameState) error
}

// Push places obj on top of the stack.
func (gs *GameState) Push(obj StackObject) {
	gs.Stack = append(gs.Stack, obj)
}

// Pop removes and returns the top of the stack.
func (gs *GameState) Pop() (StackObject, bool) {
	n := len(gs.Stack)
	if n == 0 {
		return StackObject{}, false
	}
	top := gs.Stack[n-1]
	gs.Stack[n-1] = StackObject{}
	gs.Stack = gs.Stack[:n-1]
	return top, true
}
