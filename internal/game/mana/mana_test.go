package mana

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCost(t *testing.T) {
	tests := []struct {
		in      string
		generic int
		red     int
		green   int
		cmc     int
		colors  Color
	}{
		{in: "1R", generic: 1, red: 1, cmc: 2, colors: Red},
		{in: "3", generic: 3, cmc: 3, colors: Colorless},
		{in: "GG", green: 2, cmc: 2, colors: Green},
		{in: "10rg", generic: 10, red: 1, green: 1, cmc: 12, colors: Red | Green},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCost(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.generic, c.Generic)
			assert.Equal(t, tt.red, c.R)
			assert.Equal(t, tt.green, c.G)
			assert.Equal(t, tt.cmc, c.CMC())
			assert.Equal(t, tt.colors, c.Colors())
			assert.False(t, c.Unpayable)
		})
	}

	t.Run("empty is unpayable", func(t *testing.T) {
		c, err := ParseCost("")
		require.NoError(t, err)
		assert.True(t, c.Unpayable)
		assert.Equal(t, 0, c.CMC())
		assert.False(t, Pool{R: 5}.CanPay(c))
	})

	t.Run("bad symbol", func(t *testing.T) {
		_, err := ParseCost("1X")
		assert.ErrorIs(t, err, ErrInvalidCost)
		_, err = ParseCost("R1")
		assert.ErrorIs(t, err, ErrInvalidCost)
	})
}

func TestPoolCanPay(t *testing.T) {
	tests := []struct {
		name string
		pool Pool
		cost string
		want bool
	}{
		{name: "exact colored", pool: Pool{R: 1}, cost: "R", want: true},
		{name: "missing color", pool: Pool{G: 2}, cost: "R", want: false},
		{name: "generic from leftover colored", pool: Pool{R: 2}, cost: "1R", want: true},
		{name: "generic from generic pool", pool: Pool{R: 1, Generic: 1}, cost: "1R", want: true},
		{name: "generic from other color", pool: Pool{R: 1, G: 1}, cost: "1R", want: true},
		{name: "colored cannot be covered by generic", pool: Pool{Generic: 2}, cost: "1R", want: false},
		{name: "not enough in total", pool: Pool{R: 1, G: 1}, cost: "2R", want: false},
		{name: "free spell", pool: Pool{}, cost: "0", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.pool.CanPay(MustParseCost(tt.cost)))
		})
	}
}

func TestPoolPay(t *testing.T) {
	p := Pool{R: 2, G: 1, Generic: 1}
	require.NoError(t, p.Pay(MustParseCost("2R")))
	// generic mana goes first, then colors in WUBRG order
	assert.Equal(t, Pool{G: 1}, p)

	err := p.Pay(MustParseCost("R"))
	assert.ErrorIs(t, err, ErrInsufficientMana)
	assert.Equal(t, Pool{G: 1}, p, "failed payment leaves the pool untouched")
}

func TestPoolBasics(t *testing.T) {
	var p Pool
	assert.True(t, p.IsEmpty())
	p.Add(Red, 2)
	p.Add(Colorless, 1)
	p.Add(White, 0)
	assert.Equal(t, 3, p.Total())
	assert.Equal(t, 2, p.Of(Red))
	assert.Equal(t, "W=0, U=0, B=0, R=2, G=0, Generic=1", p.String())

	cp := p
	cp.Clear()
	assert.True(t, cp.IsEmpty())
	assert.Equal(t, 3, p.Total())
}

func TestColor(t *testing.T) {
	assert.Equal(t, "C", Colorless.String())
	assert.Equal(t, "RG", (Red | Green).String())
	assert.True(t, (Red | Green).Multicolor())
	assert.False(t, Red.Multicolor())
	assert.True(t, (Red | Green).Has(Green))
}
