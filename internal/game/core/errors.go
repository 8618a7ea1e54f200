package core

import (
	"errors"
	"fmt"
)

var (
	ErrSeatLoss             = errors.New("seat lost")
	ErrInvariantViolation   = errors.New("internal invariant violated")
	ErrUnsupportedOperation = errors.New("unsupported operation")
	ErrPlanningTimeout      = errors.New("planning budget exhausted")
	ErrGameOver             = errors.New("game is over")
	ErrIllegalAction        = errors.New("illegal action")
	ErrUnknownCard          = errors.New("unknown card")
	ErrInvalidDecklist      = errors.New("invalid decklist")
	ErrNoLegalActions       = errors.New("no legal actions")
	ErrInvalidSeat          = errors.New("invalid seat")
)

// SeatLossError reports that a seat lost outside of the life check,
// for example by drawing from an empty library.
type SeatLossError struct {
	Seat   int
	Reason string
}

func (e *SeatLossError) Error() string {
	return fmt.Sprintf("seat %d lost: %s", e.Seat, e.Reason)
}

// Is lets errors.Is match ErrSeatLoss.
func (e *SeatLossError) Is(target error) bool {
	return target == ErrSeatLoss
}

// InvariantError reports a card that appears twice in one zone.
type InvariantError struct {
	Zone string
	Card CardID
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("duplicate card %d in %s", e.Card, e.Zone)
}

func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolation
}

// SeatLosses extracts every SeatLossError joined into err.
func SeatLosses(err error) []*SeatLossError {
	if err == nil {
		return nil
	}
	var out []*SeatLossError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if sl, ok := e.(*SeatLossError); ok {
			out = append(out, sl)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}

// WrapGameStateError adds turn and step context to an error.
func WrapGameStateError(turn int, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("game turn %d [%s]: %w", turn, op, err)
}

// WrapSeatError adds seat context to an error.
func WrapSeatError(seat int, op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("seat %d %s: %w", seat, op, err)
}

// Describer is implemented by anything with a human readable description,
// such as a rules action.
type Describer interface {
	Describe() string
}

// WrapActionError adds action context to an error.
func WrapActionError(action Describer, err error) error {
	if err == nil {
		return nil
	}
	if action == nil {
		return fmt.Errorf("action: %w", err)
	}
	return fmt.Errorf("action %q: %w", action.Describe(), err)
}
