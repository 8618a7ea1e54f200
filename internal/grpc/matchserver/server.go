package matchserver

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/ManaSearch/internal/match"
)

// DefaultListLimit bounds ListMatches when the request sets no limit.
const DefaultListLimit = 100

var errAtCapacity = errors.New("server at capacity")

// Server implements MatchService on top of a match runner.
type Server struct {
	UnimplementedMatchServiceServer

	runner      *match.Runner
	idempotency *IdempotencyCache
	logger      zerolog.Logger

	mu         sync.Mutex
	active     int
	maxMatches int
}

// NewServer creates a server that plays at most maxMatches matches at once;
// 0 means unlimited.
func NewServer(runner *match.Runner, maxMatches int, logger zerolog.Logger) *Server {
	return &Server{
		runner:      runner,
		idempotency: NewIdempotencyCache(),
		logger:      logger.With().Str("component", "MatchServer").Logger(),
		maxMatches:  maxMatches,
	}
}

// ActiveMatches reports the matches currently being played or planned.
func (s *Server) ActiveMatches() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Server) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.maxMatches > 0 && s.active >= s.maxMatches {
		s.logger.Warn().
			Int("active_matches", s.active).
			Int("max_matches", s.maxMatches).
			Msg("Rejecting match - server at capacity")
		return fmt.Errorf("%w: %d/%d matches active", errAtCapacity, s.active, s.maxMatches)
	}
	s.active++
	return nil
}

func (s *Server) release() {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
}

// PlayMatch plays one match and returns its record. A request_id makes the
// call idempotent: a repeated id returns the first response.
func (s *Server) PlayMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	requestID, err := stringField(req, "request_id")
	if err != nil {
		return nil, toStatus(err)
	}
	if cached := s.idempotency.Check(requestID); cached != nil {
		s.logger.Debug().Str("request_id", requestID).Msg("Returning cached match")
		return cached, nil
	}

	spec, err := specFromRequest(req)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.acquire(); err != nil {
		return nil, toStatus(err)
	}
	defer s.release()

	rec, err := s.runner.Play(ctx, spec)
	if err != nil && rec.ID == "" {
		return nil, toStatus(err)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("match_id", rec.ID).Msg("Match aborted")
	}

	resp, err := rec.Struct()
	if err != nil {
		return nil, toStatus(err)
	}
	s.idempotency.Store(requestID, resp)
	return resp, nil
}

func (s *Server) GetMatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := stringField(req, "match_id")
	if err != nil {
		return nil, toStatus(err)
	}
	if id == "" {
		return nil, toStatus(invalidf("match_id is required"))
	}

	rec, err := s.runner.Store().Get(ctx, id)
	if err != nil {
		return nil, toStatus(err)
	}
	resp, err := rec.Struct()
	return resp, toStatus(err)
}

func (s *Server) ListMatches(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit, err := uintField(req, "limit")
	if err != nil {
		return nil, toStatus(err)
	}
	if limit == 0 {
		limit = DefaultListLimit
	}

	recs, err := s.runner.Store().List(ctx, int(limit))
	if err != nil {
		return nil, toStatus(err)
	}
	resp, err := recordsStruct(recs)
	return resp, toStatus(err)
}

// Plan deals a game from the request's decklists and seed and returns the
// planner's choice for the first decision.
func (s *Server) Plan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	decks, err := decklistsFrom(req)
	if err != nil {
		return nil, toStatus(err)
	}
	seed, err := uintField(req, "seed")
	if err != nil {
		return nil, toStatus(err)
	}
	budget, err := budgetFrom(req)
	if err != nil {
		return nil, toStatus(err)
	}
	if err := s.acquire(); err != nil {
		return nil, toStatus(err)
	}
	defer s.release()

	suggestion, err := s.runner.PlanOpening(ctx, decks, seed, budget)
	if err != nil {
		return nil, toStatus(err)
	}
	s.logger.Info().
		Str("match_id", suggestion.GameID).
		Int("seat", suggestion.Seat).
		Str("action", suggestion.Action.Key).
		Int64("iterations", suggestion.Stats.Iterations).
		Msg("Planned opening")

	resp, err := suggestionStruct(suggestion)
	return resp, toStatus(err)
}
