package domain

import (
	"math"
	"time"
)

// Line is one product variant in the cart.
type Line struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	Volume    string `json:"volume"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Key identifies a line by product and volume.
func (l Line) Key() string {
	return Key(l.ProductID, l.Volume)
}

func Key(productID, volume string) string {
	return productID + "::" + volume
}

// ComboDiscount is a bundle discount attached to the cart. It only applies
// while every product of the bundle is present.
type ComboDiscount struct {
	ComboID         string   `json:"combo_id"`
	ComboName       string   `json:"combo_name"`
	DiscountPercent float64  `json:"discount_percent"`
	ProductIDs      []string `json:"product_ids"`
}

type Cart struct {
	SessionID string         `json:"session_id"`
	Items     []Line         `json:"items"`
	Combo     *ComboDiscount `json:"combo,omitempty"`
	UpdatedAt time.Time      `json:"updated_at"`
}

func New(sessionID string) *Cart {
	return &Cart{SessionID: sessionID, Items: []Line{}}
}

func (c *Cart) find(key string) int {
	for i, l := range c.Items {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

// Add puts one unit of the line into the cart, bumping the quantity when the
// same product and volume is already there.
func (c *Cart) Add(line Line) {
	if i := c.find(line.Key()); i >= 0 {
		c.Items[i].Quantity++
		return
	}
	line.Quantity = 1
	c.Items = append(c.Items, line)
}

// AddCombo adds one unit of every bundle line and attaches the discount.
func (c *Cart) AddCombo(combo ComboDiscount, lines []Line) {
	for _, l := range lines {
		c.Add(l)
	}
	combo.ProductIDs = append([]string(nil), combo.ProductIDs...)
	c.Combo = &combo
}

func (c *Cart) Remove(key string) bool {
	i := c.find(key)
	if i < 0 {
		return false
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	return true
}

// UpdateQuantity sets the quantity of a line; zero or less removes it.
func (c *Cart) UpdateQuantity(key string, quantity int) bool {
	if quantity <= 0 {
		return c.Remove(key)
	}
	i := c.find(key)
	if i < 0 {
		return false
	}
	c.Items[i].Quantity = quantity
	return true
}

func (c *Cart) Clear() {
	c.Items = []Line{}
	c.Combo = nil
}

// Quantity returns how many units of the line are held, 0 when absent.
func (c *Cart) Quantity(key string) int {
	if i := c.find(key); i >= 0 {
		return c.Items[i].Quantity
	}
	return 0
}

func (c *Cart) TotalItems() int {
	n := 0
	for _, l := range c.Items {
		n += l.Quantity
	}
	return n
}

func (c *Cart) Subtotal() int64 {
	var sum int64
	for _, l := range c.Items {
		sum += l.Price * int64(l.Quantity)
	}
	return sum
}

// ActiveCombo returns the attached combo, or nil once any of its products has
// left the cart.
func (c *Cart) ActiveCombo() *ComboDiscount {
	if c.Combo == nil {
		return nil
	}
	for _, pid := range c.Combo.ProductIDs {
		if !c.hasProduct(pid) {
			return nil
		}
	}
	return c.Combo
}

func (c *Cart) hasProduct(productID string) bool {
	for _, l := range c.Items {
		if l.ProductID == productID {
			return true
		}
	}
	return false
}

// ComboDiscountAmount is the discount over the combo's own lines, rounded to
// the nearest whole unit.
func (c *Cart) ComboDiscountAmount() int64 {
	combo := c.ActiveCombo()
	if combo == nil {
		return 0
	}
	var sum int64
	for _, l := range c.Items {
		for _, pid := range combo.ProductIDs {
			if l.ProductID == pid {
				sum += l.Price * int64(l.Quantity)
				break
			}
		}
	}
	return int64(math.Round(float64(sum) * combo.DiscountPercent))
}
