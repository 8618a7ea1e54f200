package match

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

var (
	// ErrNotFound is returned when a store has no record for an ID
	ErrNotFound = errors.New("match not found")
	// ErrUnknownPlayer is returned for a player kind the runner cannot build
	ErrUnknownPlayer = errors.New("unknown player kind")
	// ErrInvalidStoreDriver is returned when an unknown storage driver is requested
	ErrInvalidStoreDriver = errors.New("invalid storage driver")
)

// PlayerKind names a policy the runner can seat.
type PlayerKind string

const (
	PlayerRandom PlayerKind = "random"
	PlayerMCTS   PlayerKind = "mcts"
)

// ParsePlayerKind accepts the kinds above; the empty string means random.
func ParsePlayerKind(s string) (PlayerKind, error) {
	switch PlayerKind(s) {
	case "", PlayerRandom:
		return PlayerRandom, nil
	case PlayerMCTS:
		return PlayerMCTS, nil
	}
	return "", fmt.Errorf("%q: %w", s, ErrUnknownPlayer)
}

// Spec describes one match to play.
type Spec struct {
	// ID defaults to a random UUID
	ID        string
	Decklists [2]string
	Players   [2]PlayerKind
	// Seed drives seating, shuffles and both players; 0 picks one from the clock
	Seed uint64
	// Budget is the per-decision search budget of MCTS seats
	Budget time.Duration
}

// Record is the stored outcome of a match. Winner is -1 for a draw. Error
// is set when the game aborted instead of finishing.
type Record struct {
	ID        string
	Decklists [2]string
	Players   [2]PlayerKind
	Seed      uint64
	Winner    int
	Turns     int
	Actions   int
	Duration  time.Duration
	StartedAt time.Time
	Error     string
}

// Finished reports whether the game reached a result.
func (r Record) Finished() bool {
	return r.Error == ""
}

// Struct converts the record to a protobuf Struct. The seed is carried as a
// decimal string since Struct numbers are float64.
func (r Record) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"match_id":    r.ID,
		"decklist_a":  r.Decklists[0],
		"decklist_b":  r.Decklists[1],
		"player_a":    string(r.Players[0]),
		"player_b":    string(r.Players[1]),
		"seed":        strconv.FormatUint(r.Seed, 10),
		"winner":      r.Winner,
		"turns":       r.Turns,
		"actions":     r.Actions,
		"duration_ms": r.Duration.Milliseconds(),
		"started_at":  r.StartedAt.UTC().Format(time.RFC3339Nano),
		"error":       r.Error,
	})
}

// RecordFromStruct is the inverse of Record.Struct.
func RecordFromStruct(s *structpb.Struct) (Record, error) {
	f := s.GetFields()
	str := func(key string) string { return f[key].GetStringValue() }
	num := func(key string) int { return int(f[key].GetNumberValue()) }

	id := str("match_id")
	if id == "" {
		return Record{}, errors.New("record has no match_id")
	}
	seed, err := strconv.ParseUint(str("seed"), 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("record %s seed: %w", id, err)
	}
	started, err := time.Parse(time.RFC3339Nano, str("started_at"))
	if err != nil {
		return Record{}, fmt.Errorf("record %s started_at: %w", id, err)
	}
	return Record{
		ID:        id,
		Decklists: [2]string{str("decklist_a"), str("decklist_b")},
		Players:   [2]PlayerKind{PlayerKind(str("player_a")), PlayerKind(str("player_b"))},
		Seed:      seed,
		Winner:    num("winner"),
		Turns:     num("turns"),
		Actions:   num("actions"),
		Duration:  time.Duration(f["duration_ms"].GetNumberValue()) * time.Millisecond,
		StartedAt: started,
		Error:     str("error"),
	}, nil
}
