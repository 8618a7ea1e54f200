package mana

import "strings"

// Color is a set of card colors. The zero value is colorless.
type Color uint8

const (
	Colorless Color = 0
	White     Color = 1
	Blue      Color = 2
	Black     Color = 4
	Red       Color = 8
	Green     Color = 16
)

// ordered lists the colors in the canonical W U B R G order.
var ordered = []Color{White, Blue, Black, Red, Green}

var colorSymbols = map[Color]string{
	White: "W",
	Blue:  "U",
	Black: "B",
	Red:   "R",
	Green: "G",
}

// Has reports whether every color in other is also in c.
func (c Color) Has(other Color) bool {
	return c&other == other
}

// Multicolor reports whether c holds more than one color.
func (c Color) Multicolor() bool {
	n := 0
	for _, col := range ordered {
		if c.Has(col) {
			n++
		}
	}
	return n > 1
}

func (c Color) String() string {
	if c == Colorless {
		return "C"
	}
	var b strings.Builder
	for _, col := range ordered {
		if c.Has(col) {
			b.WriteString(colorSymbols[col])
		}
	}
	return b.String()
}

// colorFromSymbol maps a lowercase mana symbol to its color.
func colorFromSymbol(r rune) (Color, bool) {
	switch r {
	case 'w':
		return White, true
	case 'u':
		return Blue, true
	case 'b':
		return Black, true
	case 'r':
		return Red, true
	case 'g':
		return Green, true
	}
	return Colorless, false
}
