package mana

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	ErrInsufficientMana = errors.New("insufficient mana")
	ErrInvalidCost      = errors.New("invalid mana cost")
)

// Cost is a spell's mana cost: a generic amount plus colored symbols.
// Lands have an unpayable (empty) cost.
type Cost struct {
	Generic   int
	W         int
	U         int
	B         int
	R         int
	G         int
	Unpayable bool
	text      string
}

// ParseCost parses the compact cost notation: optional generic digits
// followed by color letters, e.g. "1R", "3", "GG". The empty string is the
// unpayable cost.
func ParseCost(s string) (Cost, error) {
	text := strings.TrimSpace(s)
	if text == "" {
		return Cost{Unpayable: true}, nil
	}

	lower := strings.ToLower(text)
	digits := 0
	for digits < len(lower) && unicode.IsDigit(rune(lower[digits])) {
		digits++
	}

	c := Cost{text: strings.ToUpper(text)}
	if digits > 0 {
		n, err := strconv.Atoi(lower[:digits])
		if err != nil {
			return Cost{}, fmt.Errorf("%w %q: %v", ErrInvalidCost, s, err)
		}
		c.Generic = n
	}
	for _, r := range lower[digits:] {
		col, ok := colorFromSymbol(r)
		if !ok {
			return Cost{}, fmt.Errorf("%w %q: unexpected symbol %q", ErrInvalidCost, s, r)
		}
		*c.slot(col)++
	}
	return c, nil
}

// MustParseCost is ParseCost for static card definitions.
func MustParseCost(s string) Cost {
	c, err := ParseCost(s)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Cost) slot(col Color) *int {
	switch col {
	case White:
		return &c.W
	case Blue:
		return &c.U
	case Black:
		return &c.B
	case Red:
		return &c.R
	default:
		return &c.G
	}
}

// Of returns the colored requirement for col, or the generic requirement
// for Colorless.
func (c Cost) Of(col Color) int {
	switch col {
	case White:
		return c.W
	case Blue:
		return c.U
	case Black:
		return c.B
	case Red:
		return c.R
	case Green:
		return c.G
	default:
		return c.Generic
	}
}

// CMC is the converted mana cost.
func (c Cost) CMC() int {
	if c.Unpayable {
		return 0
	}
	return c.Generic + c.W + c.U + c.B + c.R + c.G
}

// Colors returns the colors named by the cost's symbols.
func (c Cost) Colors() Color {
	var out Color
	for _, col := range ordered {
		if c.Of(col) > 0 {
			out |= col
		}
	}
	return out
}

func (c Cost) String() string {
	if c.Unpayable {
		return "unpayable"
	}
	if c.text != "" {
		return c.text
	}
	var b strings.Builder
	if c.Generic > 0 || c.CMC() == 0 {
		b.WriteString(strconv.Itoa(c.Generic))
	}
	for _, col := range ordered {
		b.WriteString(strings.Repeat(colorSymbols[col], c.Of(col)))
	}
	return b.String()
}
