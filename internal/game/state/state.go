package state

import (
	"fmt"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/mana"
)

// Seat holds the per-seat zones and counters.
type Seat struct {
	Hand      []core.CardID
	Graveyard []core.CardID
	Library   []core.CardID
	Pool      mana.Pool
	Life      int
	Lost      bool
	Mulligans int
}

func (s Seat) clone() Seat {
	out := s
	out.Hand = cloneIDs(s.Hand)
	out.Graveyard = cloneIDs(s.Graveyard)
	out.Library = cloneIDs(s.Library)
	return out
}

// GameState is a complete snapshot of a game. All mutable card fields live
// in the Cards arena, so Clone produces a fully independent branch.
type GameState struct {
	Turn              int
	Step              core.Step
	Active            int
	Priority          int
	Battlefield       []core.CardID
	Stack             []StackObject
	Seats             []Seat
	Combat            Assignment
	AttackersDeclared bool
	BlockersDeclared  bool
	LandsLeftToPlay   int
	LandsPerTurn      int
	Cards             []CardState
}

// New creates an empty state for the given number of seats. Only two-seat
// games are modeled.
func New(seats, startingLife, landsPerTurn int) (*GameState, error) {
	if seats != 2 {
		return nil, fmt.Errorf("%d seats: %w", seats, core.ErrUnsupportedOperation)
	}
	gs := &GameState{
		Turn:            1,
		Step:            core.StepMain1,
		Seats:           make([]Seat, seats),
		LandsLeftToPlay: landsPerTurn,
		LandsPerTurn:    landsPerTurn,
	}
	for i := range gs.Seats {
		gs.Seats[i].Life = startingLife
	}
	return gs, nil
}

// AddCard registers a new card owned by owner in the arena. The card is in
// no zone until placed in one.
func (gs *GameState) AddCard(def *CardDef, owner int) core.CardID {
	id := core.CardID(len(gs.Cards))
	gs.Cards = append(gs.Cards, CardState{
		ID:               id,
		Def:              def,
		Owner:            owner,
		Controller:       owner,
		ControlTimestamp: NeverControlled,
	})
	return id
}

// Card returns the arena entry for id. The pointer is only valid for this
// state and until the next AddCard.
func (gs *GameState) Card(id core.CardID) *CardState {
	return &gs.Cards[id]
}

// ValidSeat reports whether seat indexes a seat of this game.
func (gs *GameState) ValidSeat(seat int) bool {
	return seat >= 0 && seat < len(gs.Seats)
}

// Opponent returns the other seat of a two-seat game.
func (gs *GameState) Opponent(seat int) int {
	return (seat + 1) % len(gs.Seats)
}

// Defender is the seat being attacked this turn.
func (gs *GameState) Defender() int {
	return gs.Opponent(gs.Active)
}

// LiveSeats returns the seats that have not lost, in seat order.
func (gs *GameState) LiveSeats() []int {
	var out []int
	for i, s := range gs.Seats {
		if !s.Lost {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep copy. Card definitions and stack resolve functions
// are shared because they are immutable.
func (gs *GameState) Clone() *GameState {
	out := *gs
	out.Battlefield = cloneIDs(gs.Battlefield)
	if gs.Stack != nil {
		out.Stack = append([]StackObject(nil), gs.Stack...)
	}
	out.Seats = make([]Seat, len(gs.Seats))
	for i, s := range gs.Seats {
		out.Seats[i] = s.clone()
	}
	out.Combat = gs.Combat.Clone()
	out.Cards = append([]CardState(nil), gs.Cards...)
	return &out
}

// Draw moves the top card of seat's library into its hand. Drawing from an
// empty library marks the seat as lost and returns a SeatLossError.
func (gs *GameState) Draw(seat int) error {
	s := &gs.Seats[seat]
	if len(s.Library) == 0 {
		s.Lost = true
		return &core.SeatLossError{Seat: seat, Reason: "drew from an empty library"}
	}
	top := s.Library[0]
	s.Library = s.Library[1:]
	s.Hand = append(s.Hand, top)
	return nil
}

// DrawN draws n cards, stopping at the first failed draw.
func (gs *GameState) DrawN(seat, n int) error {
	for i := 0; i < n; i++ {
		if err := gs.Draw(seat); err != nil {
			return err
		}
	}
	return nil
}

// RemoveFromHand takes id out of seat's hand.
func (gs *GameState) RemoveFromHand(seat int, id core.CardID) bool {
	return removeID(&gs.Seats[seat].Hand, id)
}

// InHand reports whether id is in seat's hand.
func (gs *GameState) InHand(seat int, id core.CardID) bool {
	return containsID(gs.Seats[seat].Hand, id)
}

// OnBattlefield reports whether id is a permanent in play.
func (gs *GameState) OnBattlefield(id core.CardID) bool {
	return containsID(gs.Battlefield, id)
}

// PutOntoBattlefield places id into play under controller, stamping the
// control timestamp with the current turn.
func (gs *GameState) PutOntoBattlefield(id core.CardID, controller int) {
	gs.Battlefield = append(gs.Battlefield, id)
	c := gs.Card(id)
	c.Controller = controller
	c.ControlTimestamp = gs.Turn
}

// MoveToGraveyard removes a permanent from play and puts it into its
// owner's graveyard.
func (gs *GameState) MoveToGraveyard(id core.CardID) bool {
	if !removeID(&gs.Battlefield, id) {
		return false
	}
	c := gs.Card(id)
	c.reset()
	gs.Seats[c.Owner].Graveyard = append(gs.Seats[c.Owner].Graveyard, id)
	return true
}

// Permanents lists the battlefield cards controlled by seat, in play order.
func (gs *GameState) Permanents(seat int) []core.CardID {
	var out []core.CardID
	for _, id := range gs.Battlefield {
		if gs.Cards[id].Controller == seat {
			out = append(out, id)
		}
	}
	return out
}

// Creatures lists the creatures controlled by seat, in play order.
func (gs *GameState) Creatures(seat int) []core.CardID {
	var out []core.CardID
	for _, id := range gs.Battlefield {
		c := &gs.Cards[id]
		if c.Controller == seat && c.Def.IsCreature() {
			out = append(out, id)
		}
	}
	return out
}

// ClearPools empties every seat's mana pool.
func (gs *GameState) ClearPools() {
	for i := range gs.Seats {
		gs.Seats[i].Pool.Clear()
	}
}

// CheckZone returns an InvariantError if ids holds the same card twice.
func CheckZone(zone string, ids []core.CardID) error {
	seen := make(map[core.CardID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return &core.InvariantError{Zone: zone, Card: id}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// CheckZones runs CheckZone over every zone of the state.
func (gs *GameState) CheckZones() error {
	if err := CheckZone("battlefield", gs.Battlefield); err != nil {
		return err
	}
	for i, s := range gs.Seats {
		for zone, ids := range map[string][]core.CardID{"hand": s.Hand, "graveyard": s.Graveyard, "library": s.Library} {
			if err := CheckZone(fmt.Sprintf("seat %d %s", i, zone), ids); err != nil {
				return err
			}
		}
	}
	return nil
}

func cloneIDs(ids []core.CardID) []core.CardID {
	if ids == nil {
		return nil
	}
	return append([]core.CardID(nil), ids...)
}

func containsID(ids []core.CardID, id core.CardID) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func removeID(ids *[]core.CardID, id core.CardID) bool {
	for i, x := range *ids {
		if x == id {
			*ids = append((*ids)[:i:i], (*ids)[i+1:]...)
			return true
		}
	}
	return false
}

func idsEqual(a, b []core.CardID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
