package state

import (
	"math"
	"strings"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/mana"
)

// Status is a set of permanent status flags. The zero value is untapped,
// face up, phased in and unflipped.
type Status uint8

const (
	StatusDefault   Status = 0
	StatusTapped    Status = 1
	StatusFaceDown  Status = 2
	StatusPhasedOut Status = 4
	StatusFlipped   Status = 8
)

// Ability is an activated ability expressed as a capability record. Effect
// is only ever invoked after Available returned true for the same state.
type Ability struct {
	Description string
	Available   func(gs *GameState, source core.CardID) bool
	Effect      func(gs *GameState, source core.CardID) error
}

// CardDef is the immutable, shared definition of a card. Every CardState
// in every cloned state may point at the same CardDef.
type CardDef struct {
	Name      string
	TypeLine  string
	Text      string
	Cost      mana.Cost
	Power     int
	Toughness int
	Abilities []Ability
}

func (d *CardDef) IsLand() bool {
	return strings.Contains(d.TypeLine, "Land")
}

func (d *CardDef) IsCreature() bool {
	return strings.Contains(d.TypeLine, "Creature")
}

// Colors derives the card's colors from its mana cost.
func (d *CardDef) Colors() mana.Color {
	return d.Cost.Colors()
}

// NeverControlled is the control timestamp of a card that has never been
// under a seat's control on the battlefield.
const NeverControlled = math.MaxInt

// CardState holds the mutable per-state fields of one card. It lives in
// the GameState's arena so that cloning a state clones every card too.
type CardState struct {
	ID               core.CardID
	Def              *CardDef
	Owner            int
	Controller       int
	Status           Status
	Damage           int
	ControlTimestamp int
}

func (c *CardState) Tapped() bool {
	return c.Status&StatusTapped != 0
}

func (c *CardState) Tap() {
	c.Status |= StatusTapped
}

func (c *CardState) Untap() {
	c.Status &^= StatusTapped
}

func (c *CardState) Power() int {
	return c.Def.Power
}

func (c *CardState) Toughness() int {
	return c.Def.Toughness
}

// LethallyDamaged reports whether marked damage has reached toughness.
func (c *CardState) LethallyDamaged() bool {
	return c.Def.IsCreature() && c.Damage >= c.Def.Toughness
}

func (c *CardState) String() string {
	return c.Def.Name
}

// reset clears battlefield-only fields when a card leaves play.
func (c *CardState) reset() {
	c.Status = StatusDefault
	c.Damage = 0
	c.Controller = c.Owner
	c.ControlTimestamp = NeverControlled
}
