package domain

// Pricing carries the shipping rules in force.
type Pricing struct {
	ShippingFee           int64
	FreeShippingThreshold int64
}

// Quote is the priced view of a cart.
type Quote struct {
	Items               []Line         `json:"items"`
	TotalItems          int            `json:"total_items"`
	Subtotal            int64          `json:"subtotal"`
	ComboDiscount       *ComboDiscount `json:"combo_discount"`
	ComboDiscountAmount int64          `json:"combo_discount_amount"`
	AdjustedSubtotal    int64          `json:"adjusted_subtotal"`
	Shipping            int64          `json:"shipping"`
	Total               int64          `json:"total"`
}

// Quote prices the cart. Shipping is waived once the discounted subtotal
// reaches the free shipping threshold.
func (c *Cart) Quote(p Pricing) Quote {
	subtotal := c.Subtotal()
	discount := c.ComboDiscountAmount()
	adjusted := subtotal - discount

	var shipping int64
	if adjusted < p.FreeShippingThreshold {
		shipping = p.ShippingFee
	}

	items := c.Items
	if items == nil {
		items = []Line{}
	}
	return Quote{
		Items:               items,
		TotalItems:          c.TotalItems(),
		Subtotal:            subtotal,
		ComboDiscount:       c.ActiveCombo(),
		ComboDiscountAmount: discount,
		AdjustedSubtotal:    adjusted,
		Shipping:            shipping,
		Total:               adjusted + shipping,
	}
}
