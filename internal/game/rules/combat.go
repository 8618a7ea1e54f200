package rules

import (
	"sort"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// PowerSet returns all 2^n subsets of items. Subset i holds item j iff bit
// j of i is set, so the empty set comes first and the full set last.
func PowerSet[T any](items []T) [][]T {
	n := len(items)
	out := make([][]T, 0, 1<<n)
	for mask := 0; mask < 1<<n; mask++ {
		var subset []T
		for j := 0; j < n; j++ {
			if mask&(1<<j) != 0 {
				subset = append(subset, items[j])
			}
		}
		out = append(out, subset)
	}
	return out
}

// EnumerateAssignments returns every way the given blockers can block the
// given attackers: each blocker either stays back or blocks exactly one
// attacker, giving (A+1)^B assignments. The all-unblocked assignment comes
// first. Within an attacker's list blockers appear in assignment order.
func EnumerateAssignments(attackers, blockers []core.CardID) []state.Assignment {
	baseline := state.NewAssignment(attackers)
	out := []state.Assignment{baseline}
	if len(attackers) == 0 {
		return out
	}

	for _, subset := range PowerSet(blockers) {
		if len(subset) == 0 {
			continue
		}
		out = assignRemaining(out, baseline, subset, attackers)
	}
	return out
}

// assignRemaining assigns the last blocker of remaining to each attacker in
// turn and recurses on the rest, emitting each completed assignment.
func assignRemaining(out []state.Assignment, partial state.Assignment, remaining, attackers []core.CardID) []state.Assignment {
	if len(remaining) == 0 {
		return append(out, partial)
	}
	last := remaining[len(remaining)-1]
	rest := remaining[:len(remaining)-1]
	for _, attacker := range attackers {
		next := partial.Clone()
		next.AddBlocker(attacker, last)
		out = assignRemaining(out, next, rest, attackers)
	}
	return out
}

// CountAssignments is (A+1)^B as a float so large boards do not overflow.
func CountAssignments(attackers, blockers int) float64 {
	total := 1.0
	for i := 0; i < blockers; i++ {
		total *= float64(attackers + 1)
	}
	return total
}

// CanonicalBlocks reorders each attacker's blockers into the order
// EnumerateAssignments produces for the same choice: descending position in
// blockers. Use it before BlockKey when the blocks were chosen freely.
func CanonicalBlocks(blocks state.Assignment, blockers []core.CardID) state.Assignment {
	pos := make(map[core.CardID]int, len(blockers))
	for i, id := range blockers {
		pos[id] = i
	}
	out := blocks.Clone()
	for i := range out {
		sort.SliceStable(out[i].Blockers, func(a, b int) bool {
			return pos[out[i].Blockers[a]] > pos[out[i].Blockers[b]]
		})
	}
	return out
}
