package domain

import "time"

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every order status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
}

func (s Status) Valid() bool {
	for _, st := range Statuses() {
		if s == st {
			return true
		}
	}
	return false
}

const PaymentCashOnDelivery = "cod"

// Item is one purchased line, frozen at checkout time.
type Item struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Volume    string `json:"volume"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	ImageURL  string `json:"image_url,omitempty"`
}

type Order struct {
	ID              string    `json:"id"`
	UserID          *string   `json:"user_id"`
	CustomerName    string    `json:"customer_name"`
	CustomerEmail   string    `json:"customer_email"`
	CustomerPhone   string    `json:"customer_phone"`
	ShippingAddress string    `json:"shipping_address"`
	Notes           *string   `json:"notes"`
	Items           []Item    `json:"items"`
	Subtotal        int64     `json:"subtotal"`
	Discount        int64     `json:"discount"`
	ShippingFee     int64     `json:"shipping_fee"`
	Total           int64     `json:"total"`
	Status          Status    `json:"status"`
	PaymentMethod   string    `json:"payment_method"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// OrderFilter narrows admin listings.
type OrderFilter struct {
	Status Status
	Limit  int
	Offset int
}

// EventType names a change on the orders table.
type EventType string

const (
	EventInsert EventType = "INSERT"
	EventUpdate EventType = "UPDATE"
	EventDelete EventType = "DELETE"
)

// Event is published for every order change.
type Event struct {
	Type  EventType `json:"type"`
	Order *Order    `json:"order"`
}
