package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// ActionKind identifies what an Action does.
type ActionKind int

const (
	KindAdvanceStep ActionKind = iota
	KindSkipToMain
	KindPlayLand
	KindCastCreature
	KindDeclareAttackers
	KindDeclareBlockers
	KindActivateAbility
)

var actionKindNames = map[ActionKind]string{
	KindAdvanceStep:      "advance_step",
	KindSkipToMain:       "skip_to_main",
	KindPlayLand:         "play_land",
	KindCastCreature:     "cast_creature",
	KindDeclareAttackers: "declare_attackers",
	KindDeclareBlockers:  "declare_blockers",
	KindActivateAbility:  "activate_ability",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ActionKind(%d)", int(k))
}

// Action is one legal move for a seat. It only carries identifiers, so the
// same Action can be applied to any state equal to the one it was generated
// from, including clones.
type Action struct {
	Kind        ActionKind
	Seat        int
	Key         string
	Description string

	Card      core.CardID
	Ability   int
	Attackers []core.CardID
	Blocks    state.Assignment
}

func (a Action) Describe() string {
	return a.Description
}

func (a Action) String() string {
	return a.Key
}

// Apply performs the action's effect on gs. Actions produced by
// LegalActions for gs always apply cleanly; anything else is checked and
// rejected with ErrIllegalAction.
func (a Action) Apply(gs *state.GameState) error {
	if gs.Priority != a.Seat {
		return core.WrapActionError(a, fmt.Errorf("seat %d does not hold priority: %w", a.Seat, core.ErrIllegalAction))
	}
	var err error
	switch a.Kind {
	case KindAdvanceStep:
		err = AdvanceStep(gs)
	case KindSkipToMain:
		err = SkipToMain(gs)
	case KindPlayLand:
		err = PlayLand(gs, a.Seat, a.Card)
	case KindCastCreature:
		err = CastCreature(gs, a.Seat, a.Card)
	case KindDeclareAttackers:
		err = DeclareAttackers(gs, a.Seat, a.Attackers)
	case KindDeclareBlockers:
		err = DeclareBlockers(gs, a.Seat, a.Blocks)
	case KindActivateAbility:
		err = ActivateAbility(gs, a.Seat, a.Card, a.Ability)
	default:
		err = fmt.Errorf("action kind %s: %w", a.Kind, core.ErrUnsupportedOperation)
	}
	return core.WrapActionError(a, err)
}

// Find returns the action in actions with the given key.
func Find(actions []Action, key string) (Action, bool) {
	for _, a := range actions {
		if a.Key == key {
			return a, true
		}
	}
	return Action{}, false
}

func advanceAction(seat int) Action {
	return Action{Kind: KindAdvanceStep, Seat: seat, Key: "advance", Description: "Go to the next step", Card: -1}
}

func skipAction(seat int) Action {
	return Action{Kind: KindSkipToMain, Seat: seat, Key: "skip", Description: "Skip to the next first main step", Card: -1}
}

func playLandAction(gs *state.GameState, seat int, id core.CardID) Action {
	return Action{
		Kind:        KindPlayLand,
		Seat:        seat,
		Key:         "play:" + strconv.Itoa(int(id)),
		Description: fmt.Sprintf("Play land %s (#%d)", gs.Card(id), id),
		Card:        id,
	}
}

func castAction(gs *state.GameState, seat int, id core.CardID) Action {
	return Action{
		Kind:        KindCastCreature,
		Seat:        seat,
		Key:         "cast:" + strconv.Itoa(int(id)),
		Description: fmt.Sprintf("Cast creature %s (#%d)", gs.Card(id), id),
		Card:        id,
	}
}

func attackAction(seat int, attackers []core.CardID) Action {
	key := AttackKey(attackers)
	desc := "Attack with no creatures"
	if len(attackers) > 0 {
		desc = "Attack with " + joinIDs(attackers, ", ")
	}
	return Action{
		Kind:        KindDeclareAttackers,
		Seat:        seat,
		Key:         key,
		Description: desc,
		Card:        -1,
		Attackers:   attackers,
	}
}

func noBlockAction(seat int) Action {
	return Action{Kind: KindDeclareBlockers, Seat: seat, Key: "noblock", Description: "Declare no blockers", Card: -1}
}

func blockAction(seat int, blocks state.Assignment) Action {
	return Action{
		Kind:        KindDeclareBlockers,
		Seat:        seat,
		Key:         BlockKey(blocks),
		Description: "Block " + describeBlocks(blocks),
		Card:        -1,
		Blocks:      blocks,
	}
}

func abilityAction(gs *state.GameState, seat int, id core.CardID, idx int) Action {
	return Action{
		Kind:        KindActivateAbility,
		Seat:        seat,
		Key:         fmt.Sprintf("ability:%d:%d", id, idx),
		Description: fmt.Sprintf("Activate %s (#%d) ability %q", gs.Card(id), id, gs.Card(id).Def.Abilities[idx].Description),
		Card:        id,
		Ability:     idx,
	}
}

// AttackKey is the identity of an attack declaration. The attacker set is
// sorted so the key does not depend on discovery order.
func AttackKey(attackers []core.CardID) string {
	sorted := append([]core.CardID(nil), attackers...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	return "attack:" + joinIDs(sorted, ",")
}

// BlockKey is the identity of a block declaration, e.g. "block:3<-7,9|5<-".
// Attackers keep assignment order and blockers keep damage order, since
// both affect the outcome.
func BlockKey(blocks state.Assignment) string {
	var b strings.Builder
	b.WriteString("block:")
	for i, blk := range blocks {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(strconv.Itoa(int(blk.Attacker)))
		b.WriteString("<-")
		b.WriteString(joinIDs(blk.Blockers, ","))
	}
	return b.String()
}

func describeBlocks(blocks state.Assignment) string {
	var parts []string
	for _, blk := range blocks {
		if len(blk.Blockers) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("#%d with %s", blk.Attacker, joinIDs(blk.Blockers, ", ")))
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, "; ")
}

func joinIDs(ids []core.CardID, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, sep)
}
