package mcts

import (
	"math"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// node is one state in the search tree. Its reward total is kept from the
// perspective of toMove, the seat holding priority in its state.
type node struct {
	parent   *node
	action   rules.Action // action that led here from parent
	state    *state.GameState
	toMove   int
	terminal bool
	children []*node
	tried    map[string]struct{}
	rewards  float64
	visits   int
}

func newNode(parent *node, action rules.Action, gs *state.GameState) *node {
	over, _ := rules.GameOver(gs)
	return &node{
		parent:   parent,
		action:   action,
		state:    gs,
		toMove:   gs.Priority,
		terminal: over,
		tried:    make(map[string]struct{}),
	}
}

func (n *node) mean() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.rewards / float64(n.visits)
}

// valueFor returns the child's mean reward seen from seat.
func (n *node) valueFor(seat int) float64 {
	if n.toMove == seat {
		return n.mean()
	}
	return -n.mean()
}

// ucb1 scores a child visited childVisits times under a parent visited
// parentVisits times. Unvisited children score +Inf so they are always
// tried before any visited sibling.
func ucb1(meanReward float64, childVisits, parentVisits int, cp float64) float64 {
	if childVisits == 0 {
		return math.Inf(1)
	}
	return meanReward + cp*math.Sqrt(2*math.Log(float64(parentVisits))/float64(childVisits))
}

// bestChild picks the child with the highest UCB1 score from n's point of
// view. The first child wins ties.
func (n *node) bestChild(cp float64) *node {
	var best *node
	bestScore := math.Inf(-1)
	for _, child := range n.children {
		score := ucb1(child.valueFor(n.toMove), child.visits, n.visits, cp)
		if score == math.Inf(1) {
			return child
		}
		if best == nil || score > bestScore {
			best = child
			bestScore = score
		}
	}
	return best
}

// mostVisited returns the child to play: the most visited one, then the
// higher mean reward for n's seat, then the earliest generated.
func (n *node) mostVisited() *node {
	var best *node
	for _, child := range n.children {
		switch {
		case best == nil:
			best = child
		case child.visits > best.visits:
			best = child
		case child.visits == best.visits && child.valueFor(n.toMove) > best.valueFor(n.toMove):
			best = child
		}
	}
	return best
}

// backup adds one visit to every node from n up to the root. reward is
// from the perspective of n's seat to move and flips sign at ancestors
// where the other seat acts.
func (n *node) backup(reward float64) {
	leafSeat := n.toMove
	for cur := n; cur != nil; cur = cur.parent {
		cur.visits++
		if cur.toMove == leafSeat {
			cur.rewards += reward
		} else {
			cur.rewards -= reward
		}
	}
}
