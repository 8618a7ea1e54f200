package mana

import "fmt"

// Pool holds the mana a seat has available in the current step.
// It is a plain value: copying a Pool copies its contents.
type Pool struct {
	W       int
	U       int
	B       int
	R       int
	G       int
	Generic int
}

// Add adds amount mana of a single color. Colorless adds generic mana.
func (p *Pool) Add(c Color, amount int) {
	if amount <= 0 {
		return
	}
	switch c {
	case White:
		p.W += amount
	case Blue:
		p.U += amount
	case Black:
		p.B += amount
	case Red:
		p.R += amount
	case Green:
		p.G += amount
	default:
		p.Generic += amount
	}
}

// Of returns the amount of mana of color c (generic for Colorless).
func (p Pool) Of(c Color) int {
	switch c {
	case White:
		return p.W
	case Blue:
		return p.U
	case Black:
		return p.B
	case Red:
		return p.R
	case Green:
		return p.G
	default:
		return p.Generic
	}
}

func (p *Pool) slot(c Color) *int {
	switch c {
	case White:
		return &p.W
	case Blue:
		return &p.U
	case Black:
		return &p.B
	case Red:
		return &p.R
	case Green:
		return &p.G
	default:
		return &p.Generic
	}
}

// Total returns the total amount of mana in the pool.
func (p Pool) Total() int {
	return p.W + p.U + p.B + p.R + p.G + p.Generic
}

// IsEmpty reports whether the pool holds no mana.
func (p Pool) IsEmpty() bool {
	return p.Total() == 0
}

// Clear empties the pool.
func (p *Pool) Clear() {
	*p = Pool{}
}

func (p Pool) String() string {
	return fmt.Sprintf("W=%d, U=%d, B=%d, R=%d, G=%d, Generic=%d", p.W, p.U, p.B, p.R, p.G, p.Generic)
}

// CanPay reports whether the pool covers cost. Colored requirements are
// covered first; the generic requirement is then covered by whatever is left,
// colored and generic combined. Unpayable costs are never payable.
func (p Pool) CanPay(cost Cost) bool {
	_, ok := p.afterPayment(cost)
	return ok
}

// Pay removes cost from the pool. Generic requirements draw from generic mana
// first, then from leftover colors in W U B R G order.
func (p *Pool) Pay(cost Cost) error {
	rest, ok := p.afterPayment(cost)
	if !ok {
		return fmt.Errorf("cannot pay %s from pool {%s}: %w", cost, p, ErrInsufficientMana)
	}
	*p = rest
	return nil
}

func (p Pool) afterPayment(cost Cost) (Pool, bool) {
	if cost.Unpayable {
		return p, false
	}
	rest := p
	for _, c := range ordered {
		need := cost.Of(c)
		slot := rest.slot(c)
		if *slot < need {
			return p, false
		}
		*slot -= need
	}

	generic := cost.Generic
	take := min(generic, rest.Generic)
	rest.Generic -= take
	generic -= take
	for _, c := range ordered {
		if generic == 0 {
			break
		}
		slot := rest.slot(c)
		take = min(generic, *slot)
		*slot -= take
		generic -= take
	}
	if generic > 0 {
		return p, false
	}
	return rest, true
}
