package state

import "github.com/mitchelldurbincs/ManaSearch/internal/game/core"

// Block relates one attacker to the creatures blocking it, in damage
// assignment order.
type Block struct {
	Attacker core.CardID
	Blockers []core.CardID
}

// Assignment maps every attacker to its ordered blockers. A nil Assignment
// means there is no combat in progress.
type Assignment []Block

// NewAssignment returns an assignment with every attacker unblocked.
func NewAssignment(attackers []core.CardID) Assignment {
	a := make(Assignment, len(attackers))
	for i, id := range attackers {
		a[i] = Block{Attacker: id}
	}
	return a
}

// Clone deep-copies the assignment.
func (a Assignment) Clone() Assignment {
	if a == nil {
		return nil
	}
	out := make(Assignment, len(a))
	for i, b := range a {
		out[i] = Block{Attacker: b.Attacker}
		if b.Blockers != nil {
			out[i].Blockers = append([]core.CardID(nil), b.Blockers...)
		}
	}
	return out
}

// Attackers lists the attackers in order.
func (a Assignment) Attackers() []core.CardID {
	out := make([]core.CardID, len(a))
	for i, b := range a {
		out[i] = b.Attacker
	}
	return out
}

// IndexOf returns the position of attacker, or -1.
func (a Assignment) IndexOf(attacker core.CardID) int {
	for i, b := range a {
		if b.Attacker == attacker {
			return i
		}
	}
	return -1
}

// Blockers returns the blockers assigned to attacker.
func (a Assignment) Blockers(attacker core.CardID) []core.CardID {
	if i := a.IndexOf(attacker); i >= 0 {
		return a[i].Blockers
	}
	return nil
}

// AddBlocker appends blocker to attacker's list.
func (a Assignment) AddBlocker(attacker, blocker core.CardID) bool {
	i := a.IndexOf(attacker)
	if i < 0 {
		return false
	}
	a[i].Blockers = append(a[i].Blockers, blocker)
	return true
}

// IsBlocking reports whether id blocks any attacker.
func (a Assignment) IsBlocking(id core.CardID) bool {
	for _, b := range a {
		for _, blk := range b.Blockers {
			if blk == id {
				return true
			}
		}
	}
	return false
}

// Equal compares two assignments, including blocker order.
func (a Assignment) Equal(other Assignment) bool {
	if (a == nil) != (other == nil) || len(a) != len(other) {
		return false
	}
	for i := range a {
		if a[i].Attacker != other[i].Attacker || !idsEqual(a[i].Blockers, other[i].Blockers) {
			return false
		}
	}
	return true
}
