package cards

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// DeckEntry is one "<count> <name>" line of a decklist.
type DeckEntry struct {
	Count int
	Name  string
}

// Decklist is an ordered list of entries.
type Decklist []DeckEntry

// Size is the total number of cards in the list.
func (d Decklist) Size() int {
	n := 0
	for _, e := range d {
		n += e.Count
	}
	return n
}

func (d Decklist) String() string {
	var b strings.Builder
	for i, e := range d {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d %s", e.Count, e.Name)
	}
	return b.String()
}

// ParseDecklist parses lines of the form "<count> <card name>". Blank lines
// are ignored.
func ParseDecklist(text string) (Decklist, error) {
	var deck Decklist
	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		countText, name, ok := strings.Cut(line, " ")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("line %d %q: %w", lineNo, line, core.ErrInvalidDecklist)
		}
		count, err := strconv.Atoi(countText)
		if err != nil || count <= 0 {
			return nil, fmt.Errorf("line %d %q: bad count: %w", lineNo, line, core.ErrInvalidDecklist)
		}
		deck = append(deck, DeckEntry{Count: count, Name: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read decklist: %w", err)
	}
	if len(deck) == 0 {
		return nil, fmt.Errorf("empty decklist: %w", core.ErrInvalidDecklist)
	}
	return deck, nil
}

// BuildLibrary adds every card of deck to the arena of gs, owned by seat,
// and appends them to the seat's library in decklist order.
func BuildLibrary(reg *Registry, gs *state.GameState, seat int, deck Decklist) error {
	if !gs.ValidSeat(seat) {
		return fmt.Errorf("build library for seat %d: %w", seat, core.ErrInvalidSeat)
	}
	defs := make([]*state.CardDef, len(deck))
	for i, e := range deck {
		def, err := reg.Lookup(e.Name)
		if err != nil {
			return fmt.Errorf("build library for seat %d: %w", seat, err)
		}
		defs[i] = def
	}
	for i, e := range deck {
		for n := 0; n < e.Count; n++ {
			id := gs.AddCard(defs[i], seat)
			gs.Seats[seat].Library = append(gs.Seats[seat].Library, id)
		}
	}
	return nil
}
