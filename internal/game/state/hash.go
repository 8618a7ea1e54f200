package state

import (
	"encoding/binary"
	"hash"
	"hash/fnv"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/mana"
)

// StateKey is a 64-bit hash over the value of a GameState. Equal states
// always share a key; distinct states may collide, so callers that need
// exact equivalence must confirm with Equal.
type StateKey uint64

func (gs *GameState) Key() StateKey {
	hasher := fnv.New64a()

	writeInts(hasher, gs.Turn, int(gs.Step), gs.Active, gs.Priority, gs.LandsLeftToPlay, gs.LandsPerTurn)
	writeBools(hasher, gs.AttackersDeclared, gs.BlockersDeclared)

	writeIDs(hasher, gs.Battlefield)

	// Stack
	writeInts(hasher, len(gs.Stack))
	for _, obj := range gs.Stack {
		writeInts(hasher, int(obj.Kind), int(obj.Card), obj.Controller)
		hasher.Write([]byte(obj.Description))
	}

	for _, s := range gs.Seats {
		writeIDs(hasher, s.Hand)
		writeIDs(hasher, s.Graveyard)
		writeIDs(hasher, s.Library)
		writePool(hasher, s.Pool)
		writeInts(hasher, s.Life, s.Mulligans)
		writeBools(hasher, s.Lost)
	}

	// Combat
	writeBools(hasher, gs.Combat != nil)
	writeInts(hasher, len(gs.Combat))
	for _, b := range gs.Combat {
		writeInts(hasher, int(b.Attacker))
		writeIDs(hasher, b.Blockers)
	}

	// Arena
	writeInts(hasher, len(gs.Cards))
	for i := range gs.Cards {
		c := &gs.Cards[i]
		writeInts(hasher, c.Controller, int(c.Status), c.Damage, c.ControlTimestamp)
	}

	return StateKey(hasher.Sum64())
}

// Equal reports whether two states hold the same value: every zone, life
// total, mana pool, the step and seat fields, the combat assignment and
// every card's mutable fields.
func (gs *GameState) Equal(other *GameState) bool {
	if gs == other {
		return true
	}
	if gs == nil || other == nil {
		return false
	}
	if gs.Turn != other.Turn || gs.Step != other.Step || gs.Active != other.Active ||
		gs.Priority != other.Priority || gs.LandsLeftToPlay != other.LandsLeftToPlay ||
		gs.LandsPerTurn != other.LandsPerTurn ||
		gs.AttackersDeclared != other.AttackersDeclared || gs.BlockersDeclared != other.BlockersDeclared {
		return false
	}
	if !idsEqual(gs.Battlefield, other.Battlefield) || !gs.Combat.Equal(other.Combat) {
		return false
	}
	if len(gs.Stack) != len(other.Stack) {
		return false
	}
	for i, obj := range gs.Stack {
		o := other.Stack[i]
		if obj.Kind != o.Kind || obj.Card != o.Card || obj.Controller != o.Controller || obj.Description != o.Description {
			return false
		}
	}
	if len(gs.Seats) != len(other.Seats) {
		return false
	}
	for i, s := range gs.Seats {
		o := other.Seats[i]
		if s.Pool != o.Pool || s.Life != o.Life || s.Lost != o.Lost || s.Mulligans != o.Mulligans ||
			!idsEqual(s.Hand, o.Hand) || !idsEqual(s.Graveyard, o.Graveyard) || !idsEqual(s.Library, o.Library) {
			return false
		}
	}
	if len(gs.Cards) != len(other.Cards) {
		return false
	}
	for i := range gs.Cards {
		a, b := &gs.Cards[i], &other.Cards[i]
		if a.Def != b.Def || a.Owner != b.Owner || a.Controller != b.Controller || a.Status != b.Status ||
			a.Damage != b.Damage || a.ControlTimestamp != b.ControlTimestamp {
			return false
		}
	}
	return true
}

func writeInts(h hash.Hash64, values ...int) {
	for _, v := range values {
		binary.Write(h, binary.LittleEndian, int64(v))
	}
}

func writeBools(h hash.Hash64, values ...bool) {
	for _, v := range values {
		var b byte
		if v {
			b = 1
		}
		h.Write([]byte{b})
	}
}

func writeIDs(h hash.Hash64, ids []core.CardID) {
	writeInts(h, len(ids))
	for _, id := range ids {
		writeInts(h, int(id))
	}
}

func writePool(h hash.Hash64, p mana.Pool) {
	writeInts(h, p.W, p.U, p.B, p.R, p.G, p.Generic)
}
