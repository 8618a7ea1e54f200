package cards

import (
	"fmt"

	"github.com/mitchelldurbincs/ManaSearch/internal/game/core"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/mana"
	"github.com/mitchelldurbincs/ManaSearch/internal/game/state"
)

// RegisterBasicCards adds the five basic lands and the vanilla creatures.
func RegisterBasicCards(r *Registry) {
	r.MustRegister("Plains", basicLand("Plains", mana.White))
	r.MustRegister("Island", basicLand("Island", mana.Blue))
	r.MustRegister("Swamp", basicLand("Swamp", mana.Black))
	r.MustRegister("Mountain", basicLand("Mountain", mana.Red))
	r.MustRegister("Forest", basicLand("Forest", mana.Green))

	r.MustRegister("Goblin Piker", creature("Goblin Piker", "Creature - Goblin", "1R", 2, 1))
	r.MustRegister("Grizzly Bears", creature("Grizzly Bears", "Creature - Bear", "1G", 2, 2))
	r.MustRegister("Hill Giant", creature("Hill Giant", "Creature - Giant", "3R", 3, 3))
	r.MustRegister("Savannah Lions", creature("Savannah Lions", "Creature - Cat", "W", 2, 1))
}

func basicLand(name string, color mana.Color) Constructor {
	return func() *state.CardDef {
		return &state.CardDef{
			Name:     name,
			TypeLine: "Basic Land - " + name,
			Text:     fmt.Sprintf("{T}: Add {%s}.", color),
			Cost:     mana.MustParseCost(""),
			Abilities: []state.Ability{
				TapForMana(color),
			},
		}
	}
}

func creature(name, typeLine, cost string, power, toughness int) Constructor {
	return func() *state.CardDef {
		return &state.CardDef{
			Name:      name,
			TypeLine:  typeLine,
			Cost:      mana.MustParseCost(cost),
			Power:     power,
			Toughness: toughness,
		}
	}
}

// TapForMana is a mana ability: it taps its source and adds one mana of
// color to the controller's pool. Mana abilities resolve immediately and
// never use the stack.
func TapForMana(color mana.Color) state.Ability {
	return state.Ability{
		Description: fmt.Sprintf("{T}: Add {%s}", color),
		Available: func(gs *state.GameState, source core.CardID) bool {
			return gs.OnBattlefield(source) && !gs.Card(source).Tapped()
		},
		Effect: func(gs *state.GameState, source core.CardID) error {
			c := gs.Card(source)
			if c.Tapped() {
				return fmt.Errorf("%s is already tapped: %w", c, core.ErrIllegalAction)
			}
			c.Tap()
			gs.Seats[c.Controller].Pool.Add(color, 1)
			return nil
		},
	}
}
