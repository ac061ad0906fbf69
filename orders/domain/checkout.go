package domain

// CheckoutForm is what a shopper submits to place an order.
type CheckoutForm struct {
	FullName   string         `json:"full_name"`
	Email      string         `json:"email"`
	Phone      string         `json:"phone"`
	Address    string         `json:"address"`
	City       string         `json:"city"`
	PostalCode string         `json:"postal_code"`
	Notes      string         `json:"notes"`
	Items      []CheckoutLine `json:"items"`
	ComboID    string         `json:"combo_id"`
	// SessionID checks out the stored cart of that session when Items is empty.
	SessionID string `json:"session_id"`
}

type CheckoutLine struct {
	ProductID string `json:"product_id"`
	Volume    string `json:"volume"`
	Quantity  int    `json:"quantity"`
}

// Receipt is what the shopper sees after placing an order.
type Receipt struct {
	OrderID             string `json:"order_id"`
	Items               []Item `json:"items"`
	Subtotal            int64  `json:"subtotal"`
	ComboName           string `json:"combo_name,omitempty"`
	ComboDiscountAmount int64  `json:"combo_discount_amount"`
	ShippingCost        int64  `json:"shipping_cost"`
	Total               int64  `json:"total"`
}
