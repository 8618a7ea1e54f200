package mcts

import (
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

type cacheEntry struct {
	state   *state.GameState
	actions []rules.Action
}

// actionCache maps states to their legal actions by value. Keys are hashes;
// entries sharing a key are told apart with GameState.Equal. Cached states
// must not be mutated afterwards.
type actionCache struct {
	entries map[state.StateKey][]cacheEntry
	metrics *collector
}

func newActionCache(metrics *collector) *actionCache {
	return &actionCache{
		entries: make(map[state.StateKey][]cacheEntry),
		metrics: metrics,
	}
}

// actions returns the legal actions for the seat holding priority in gs.
func (c *actionCache) actions(gs *state.GameState) ([]rules.Action, error) {
	key := gs.Key()
	for _, e := range c.entries[key] {
		if e.state.Equal(gs) {
			c.metrics.AddCacheHit()
			return e.actions, nil
		}
	}
	c.metrics.AddCacheMiss()

	actions, err := rules.LegalActions(gs, gs.Priority)
	if err != nil {
		return nil, err
	}
	c.entries[key] = append(c.entries[key], cacheEntry{state: gs, actions: actions})
	return actions, nil
}

func (c *actionCache) len() int {
	n := 0
	for _, bucket := range c.entries {
		n += len(bucket)
	}
	return n
}
