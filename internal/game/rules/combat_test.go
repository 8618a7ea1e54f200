package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

func ids(from, n int) []core.CardID {
	out := make([]core.CardID, n)
	for i := range out {
		out[i] = core.CardID(from + i)
	}
	return out
}

func TestPowerSet(t *testing.T) {
	for n := 0; n <= 6; n++ {
		sets := PowerSet(ids(0, n))
		assert.Len(t, sets, 1<<n)
		assert.Empty(t, sets[0], "empty set first")
		assert.Len(t, sets[len(sets)-1], n, "full set last")
	}
	assert.Equal(t, [][]string{nil, {"a"}, {"b"}, {"a", "b"}}, PowerSet([]string{"a", "b"}))
}

func TestEnumerateAssignmentsCount(t *testing.T) {
	vectors := []struct{ a, b, want int }{
		{1, 1, 2},
		{2, 1, 3},
		{1, 2, 4},
		{2, 2, 9},
		{3, 2, 16},
		{2, 3, 27},
		{3, 3, 64},
		{0, 3, 1},
		{3, 0, 1},
		{0, 0, 1},
		{4, 4, 625},
	}
	for _, v := range vectors {
		got := EnumerateAssignments(ids(0, v.a), ids(100, v.b))
		assert.Len(t, got, v.want, "A=%d B=%d", v.a, v.b)
		assert.Equal(t, float64(v.want), CountAssignments(v.a, v.b))
	}
}

func TestEnumerateAssignmentsShape(t *testing.T) {
	attackers := ids(0, 3)
	blockers := ids(100, 3)
	all := EnumerateAssignments(attackers, blockers)

	assert.True(t, all[0].Equal(state.NewAssignment(attackers)), "baseline first")

	seen := make(map[string]bool)
	for _, a := range all {
		require.Equal(t, attackers, a.Attackers())
		used := make(map[core.CardID]bool)
		for _, blk := range a {
			for _, id := range blk.Blockers {
				assert.False(t, used[id], "blocker %d used twice", id)
				used[id] = true
			}
		}
		key := BlockKey(a)
		assert.False(t, seen[key], "duplicate assignment %s", key)
		seen[key] = true
	}
	assert.Len(t, seen, 64)
}

func TestEnumerateAssignmentsDoesNotAlias(t *testing.T) {
	all := EnumerateAssignments(ids(0, 2), ids(100, 2))
	all[1][0].Blockers = append(all[1][0].Blockers, 999)
	for _, a := range all[2:] {
		assert.False(t, a.IsBlocking(999))
	}
	assert.False(t, all[0].IsBlocking(999))
}

func TestBlockKeys(t *testing.T) {
	a := state.NewAssignment([]core.CardID{3, 5})
	a.AddBlocker(3, 7)
	a.AddBlocker(3, 9)
	assert.Equal(t, "block:3<-7,9|5<-", BlockKey(a))
	assert.Equal(t, "attack:2,4,9", AttackKey([]core.CardID{9, 2, 4}))
	assert.Equal(t, "attack:", AttackKey(nil))
}

func TestCanonicalBlocksMatchesEnumeration(t *testing.T) {
	attackers := []core.CardID{3, 5}
	blockers := []core.CardID{7, 8, 9}

	enumerated := map[string]bool{}
	for _, a := range EnumerateAssignments(attackers, blockers) {
		enumerated[BlockKey(a)] = true
	}

	free := state.NewAssignment(attackers)
	free.AddBlocker(3, 7)
	free.AddBlocker(3, 9)
	free.AddBlocker(5, 8)
	assert.False(t, enumerated[BlockKey(free)])

	canonical := CanonicalBlocks(free, blockers)
	assert.Equal(t, "block:3<-9,7|5<-8", BlockKey(canonical))
	assert.True(t, enumerated[BlockKey(canonical)])
	assert.Equal(t, []core.CardID{7, 9}, free.Blockers(3), "input is left alone")
}
