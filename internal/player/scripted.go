package player

import (
	"context"
	"sync"

	"github.com/mitchelldurbincs/ManaSearch/internal/game"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/rules"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

var _ game.Player = (*Scripted)(nil)

// Scripted replays a queue of action keys. A key that is not legal when its
// turn comes is still returned, so the engine sees and rejects it. Once the
// queue is empty the fallback player decides, or the seat advances.
type Scripted struct {
	mu        sync.Mutex
	keys      []string
	mulligans []bool
	fallback  game.Player
}

func NewScripted(keys ...string) *Scripted {
	return &Scripted{keys: keys}
}

// WithFallback sets the player used after the script runs out.
func (s *Scripted) WithFallback(p game.Player) *Scripted {
	s.fallback = p
	return s
}

// WithMulligans queues mulligan answers; once they run out the seat keeps.
func (s *Scripted) WithMulligans(answers ...bool) *Scripted {
	s.mulligans = answers
	return s
}

// Remaining reports how many scripted keys are left.
func (s *Scripted) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.keys)
}

func (s *Scripted) MulliganHand(ctx context.Context, view *state.GameState, seat int) (bool, error) {
	s.mu.Lock()
	if len(s.mulligans) > 0 {
		answer := s.mulligans[0]
		s.mulligans = s.mulligans[1:]
		s.mu.Unlock()
		return answer, nil
	}
	s.mu.Unlock()
	return false, nil
}

func (s *Scripted) GetAction(ctx context.Context, view *state.GameState, seat int, actions []rules.Action) (rules.Action, error) {
	s.mu.Lock()
	if len(s.keys) > 0 {
		key := s.keys[0]
		s.keys = s.keys[1:]
		s.mu.Unlock()
		if a, ok := rules.Find(actions, key); ok {
			return a, nil
		}
		return rules.Action{Seat: seat, Key: key, Description: "scripted " + key, Card: -1}, nil
	}
	s.mu.Unlock()

	if s.fallback != nil {
		return s.fallback.GetAction(ctx, view, seat, actions)
	}
	if a, ok := firstOfKind(actions, rules.KindAdvanceStep); ok {
		return a, nil
	}
	return rules.Action{}, core.ErrNoLegalActions
}

func (s *Scripted) ChooseAttackers(ctx context.Context, view *state.GameState, seat int, candidates []core.CardID) ([]core.CardID, error) {
	if s.fallback != nil {
		return s.fallback.ChooseAttackers(ctx, view, seat, candidates)
	}
	return nil, nil
}

func (s *Scripted) ChooseBlockers(ctx context.Context, view *state.GameState, seat int, assignment state.Assignment, candidates []core.CardID) error {
	if s.fallback != nil {
		return s.fallback.ChooseBlockers(ctx, view, seat, assignment, candidates)
	}
	return nil
}

func (s *Scripted) OrderBlockers(ctx context.Context, view *state.GameState, seat int, assignment state.Assignment) error {
	if s.fallback != nil {
		return s.fallback.OrderBlockers(ctx, view, seat, assignment)
	}
	return nil
}
