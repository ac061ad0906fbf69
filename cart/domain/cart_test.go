package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func darkElegance() (ComboDiscount, []Line) {
	combo := ComboDiscount{
		ComboID:         "dark-elegance",
		ComboName:       "Dark Elegance",
		DiscountPercent: 0.1,
		ProductIDs:      []string{"midnight-fern", "velvet-rose", "forest-rain"},
	}
	lines := []Line{
		{ProductID: "midnight-fern", Name: "Midnight Fern", Volume: "10ml", Price: 1250},
		{ProductID: "velvet-rose", Name: "Velvet Rose", Volume: "10ml", Price: 1395},
		{ProductID: "forest-rain", Name: "Forest Rain", Volume: "10ml", Price: 1180},
	}
	return combo, lines
}

func TestCart_AddMergesSameVariant(t *testing.T) {
	t.Parallel()
	c := New("s1")
	c.Add(Line{ProductID: "oud-mystique", Volume: "50ml", Price: 3200, Quantity: 7})
	c.Add(Line{ProductID: "oud-mystique", Volume: "50ml", Price: 3200})
	c.Add(Line{ProductID: "oud-mystique", Volume: "100ml", Price: 5400})

	require.Len(t, c.Items, 2)
	assert.Equal(t, 2, c.Items[0].Quantity, "incoming quantity is ignored, each add is one unit")
	assert.Equal(t, "oud-mystique::50ml", c.Items[0].Key())
	assert.Equal(t, 3, c.TotalItems())
	assert.Equal(t, int64(3200*2+5400), c.Subtotal())
}

func TestCart_ComboDiscountAmount(t *testing.T) {
	t.Parallel()
	c := New("s1")
	combo, lines := darkElegance()
	c.Add(Line{ProductID: "gold-resin", Volume: "100ml", Price: 6000})
	c.AddCombo(combo, lines)
	require.True(t, c.UpdateQuantity(Key("velvet-rose", "10ml"), 2))

	comboSum := int64(1250 + 1395*2 + 1180)
	require.NotNil(t, c.ActiveCombo())
	assert.Equal(t, int64(522), c.ComboDiscountAmount())
	assert.Equal(t, comboSum+6000, c.Subtotal())
}

func TestCart_ComboDiscountRoundsHalfUp(t *testing.T) {
	t.Parallel()
	c := New("s1")
	c.AddCombo(ComboDiscount{ComboID: "x", DiscountPercent: 0.1, ProductIDs: []string{"a", "b"}}, []Line{
		{ProductID: "a", Volume: "10ml", Price: 1000},
		{ProductID: "b", Volume: "10ml", Price: 1005},
	})
	assert.Equal(t, int64(201), c.ComboDiscountAmount())
}

func TestCart_RemovingComboItemDropsDiscount(t *testing.T) {
	t.Parallel()
	c := New("s1")
	combo, lines := darkElegance()
	c.AddCombo(combo, lines)
	require.NotNil(t, c.ActiveCombo())

	require.True(t, c.Remove(Key("forest-rain", "10ml")))
	assert.Nil(t, c.ActiveCombo())
	assert.Equal(t, int64(0), c.ComboDiscountAmount())

	c.Add(lines[2])
	assert.NotNil(t, c.ActiveCombo(), "combo comes back once every product is present again")

	require.True(t, c.UpdateQuantity(Key("midnight-fern", "10ml"), 0))
	assert.Nil(t, c.ActiveCombo())
	assert.False(t, c.Remove("missing::10ml"))
}

func TestCart_Clear(t *testing.T) {
	t.Parallel()
	c := New("s1")
	combo, lines := darkElegance()
	c.AddCombo(combo, lines)
	c.Clear()

	assert.Empty(t, c.Items)
	assert.Nil(t, c.Combo)
	assert.Equal(t, 0, c.TotalItems())
}

func TestCart_Quote(t *testing.T) {
	t.Parallel()
	pricing := Pricing{ShippingFee: 120, FreeShippingThreshold: 8000}

	c := New("s1")
	combo, lines := darkElegance()
	c.AddCombo(combo, lines)
	q := c.Quote(pricing)
	assert.Equal(t, int64(3825), q.Subtotal)
	assert.Equal(t, int64(383), q.ComboDiscountAmount)
	assert.Equal(t, int64(3442), q.AdjustedSubtotal)
	assert.Equal(t, int64(120), q.Shipping)
	assert.Equal(t, int64(3562), q.Total)

	c.Add(Line{ProductID: "silk-saffron", Volume: "100ml", Price: 4558})
	q = c.Quote(pricing)
	assert.Equal(t, int64(8000), q.AdjustedSubtotal)
	assert.Equal(t, int64(0), q.Shipping, "threshold is inclusive")
	assert.Equal(t, int64(8000), q.Total)
}
