package matchserver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/match"
)

// errInvalidRequest marks a malformed request field.
var errInvalidRequest = errors.New("invalid request")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errInvalidRequest, fmt.Sprintf(format, args...))
}

func stringField(req *structpb.Struct, key string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok || v.GetKind() == nil {
		return "", nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return "", nil
	}
	s, isString := v.GetKind().(*structpb.Value_StringValue)
	if !isString {
		return "", invalidf("%s must be a string", key)
	}
	return s.StringValue, nil
}

// uintField accepts a non-negative integral number or a decimal string, the
// latter for values beyond float64 precision.
func uintField(req *structpb.Struct, key string) (uint64, error) {
	v, ok := req.GetFields()[key]
	if !ok || v.GetKind() == nil {
		return 0, nil
	}
	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return 0, nil
	case *structpb.Value_NumberValue:
		n := kind.NumberValue
		if n < 0 || n != math.Trunc(n) || n >= 1<<64 {
			return 0, invalidf("%s must be a non-negative integer", key)
		}
		return uint64(n), nil
	case *structpb.Value_StringValue:
		n, err := strconv.ParseUint(kind.StringValue, 10, 64)
		if err != nil {
			return 0, invalidf("%s: %v", key, err)
		}
		return n, nil
	}
	return 0, invalidf("%s must be a number", key)
}

func decklistsFrom(req *structpb.Struct) ([2]string, error) {
	var decks [2]string
	for i, key := range []string{"decklist_a", "decklist_b"} {
		deck, err := stringField(req, key)
		if err != nil {
			return decks, err
		}
		if deck == "" {
			return decks, invalidf("%s is required", key)
		}
		decks[i] = deck
	}
	return decks, nil
}

func budgetFrom(req *structpb.Struct) (time.Duration, error) {
	ms, err := uintField(req, "budget_ms")
	if err != nil {
		return 0, err
	}
	return time.Duration(ms) * time.Millisecond, nil
}

// specFromRequest reads a PlayMatch request.
func specFromRequest(req *structpb.Struct) (match.Spec, error) {
	var spec match.Spec
	var err error

	if spec.Decklists, err = decklistsFrom(req); err != nil {
		return spec, err
	}
	for i, key := range []string{"player_a", "player_b"} {
		name, err := stringField(req, key)
		if err != nil {
			return spec, err
		}
		if spec.Players[i], err = match.ParsePlayerKind(name); err != nil {
			return spec, err
		}
	}
	if spec.ID, err = stringField(req, "match_id"); err != nil {
		return spec, err
	}
	if spec.Seed, err = uintField(req, "seed"); err != nil {
		return spec, err
	}
	if spec.Budget, err = budgetFrom(req); err != nil {
		return spec, err
	}
	return spec, nil
}

func suggestionStruct(s match.Suggestion) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"match_id":      s.GameID,
		"seat":          s.Seat,
		"action":        s.Action.Key,
		"kind":          s.Action.Kind.String(),
		"description":   s.Action.Description,
		"iterations":    s.Stats.Iterations,
		"playouts":      s.Stats.Playouts,
		"root_children": s.Stats.RootChildren,
		"duration_ms":   s.Stats.Duration.Milliseconds(),
		"timed_out":     s.Stats.TimedOut,
	})
}

func recordsStruct(recs []match.Record) (*structpb.Struct, error) {
	values := make([]*structpb.Value, 0, len(recs))
	for _, rec := range recs {
		s, err := rec.Struct()
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(s))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"matches": structpb.NewListValue(&structpb.ListValue{Values: values}),
		"count":   structpb.NewNumberValue(float64(len(values))),
	}}, nil
}

// toStatus maps engine, store and request errors to gRPC status codes.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok && status.Code(err) != codes.Unknown {
		return err
	}
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, match.ErrUnknownPlayer),
		errors.Is(err, core.ErrUnknownCard),
		errors.Is(err, core.ErrInvalidDecklist),
		errors.Is(err, core.ErrUnsupportedOperation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, match.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, errAtCapacity):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
