package application

import (
	"context"
	"fmt"

	cartApp "github.com/mervel/storefront/cart/application"
	cartDomain "github.com/mervel/storefront/cart/domain"
	"github.com/mervel/storefront/orders/domain"
	"github.com/mervel/storefront/validations"
	"github.com/sirupsen/logrus"
)

// CartSource prices carts for checkout.
type CartSource interface {
	Build(ctx context.Context, inputs []cartApp.LineInput, comboID string) (*cartDomain.Cart, error)
	Load(ctx context.Context, sessionID string) (*cartDomain.Cart, error)
	Quote(ctx context.Context, c *cartDomain.Cart) (cartDomain.Quote, error)
	Clear(ctx context.Context, sessionID string) error
}

type CheckoutService struct {
	repo   domain.OrderRepository
	carts  CartSource
	events *Broadcaster
}

func NewCheckoutService(repo domain.OrderRepository, carts CartSource, events *Broadcaster) *CheckoutService {
	return &CheckoutService{repo: repo, carts: carts, events: events}
}

// PlaceOrder prices the submitted lines (or the session cart) against the
// catalog and stores a pending cash-on-delivery order.
func (s *CheckoutService) PlaceOrder(ctx context.Context, form *domain.CheckoutForm, userID *string) (*domain.Receipt, error) {
	if err := validations.ValidateCheckout(ctx, form); err != nil {
		return nil, err
	}

	cart, err := s.cart(ctx, form)
	if err != nil {
		return nil, err
	}
	if cart.TotalItems() == 0 {
		return nil, domain.ErrEmptyCart
	}
	quote, err := s.carts.Quote(ctx, cart)
	if err != nil {
		return nil, err
	}

	items := make([]domain.Item, len(quote.Items))
	for i, l := range quote.Items {
		items[i] = domain.Item{
			ProductID: l.ProductID,
			Name:      l.Name,
			Volume:    l.Volume,
			Price:     l.Price,
			Quantity:  l.Quantity,
			ImageURL:  l.ImageURL,
		}
	}

	var notes *string
	if form.Notes != "" {
		n := form.Notes
		notes = &n
	}

	order := &domain.Order{
		UserID:          userID,
		CustomerName:    form.FullName,
		CustomerEmail:   form.Email,
		CustomerPhone:   form.Phone,
		ShippingAddress: fmt.Sprintf("%s, %s %s", form.Address, form.City, form.PostalCode),
		Notes:           notes,
		Items:           items,
		Subtotal:        quote.Subtotal,
		Discount:        quote.ComboDiscountAmount,
		ShippingFee:     quote.Shipping,
		Total:           quote.Total,
		Status:          domain.StatusPending,
		PaymentMethod:   domain.PaymentCashOnDelivery,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	logrus.Infof("[ORDERS] Order %s placed: %d items, total %d", order.ID, cart.TotalItems(), order.Total)
	s.events.Publish(domain.Event{Type: domain.EventInsert, Order: order})

	if len(form.Items) == 0 && form.SessionID != "" {
		if err := s.carts.Clear(ctx, form.SessionID); err != nil {
			logrus.WithError(err).Warnf("[ORDERS] Failed to clear cart session %s", form.SessionID)
		}
	}

	receipt := &domain.Receipt{
		OrderID:             order.ID,
		Items:               items,
		Subtotal:            quote.Subtotal,
		ComboDiscountAmount: quote.ComboDiscountAmount,
		ShippingCost:        quote.Shipping,
		Total:               quote.Total,
	}
	if quote.ComboDiscount != nil {
		receipt.ComboName = quote.ComboDiscount.ComboName
	}
	return receipt, nil
}

func (s *CheckoutService) cart(ctx context.Context, form *domain.CheckoutForm) (*cartDomain.Cart, error) {
	if len(form.Items) == 0 {
		if form.SessionID == "" {
			return nil, domain.ErrEmptyCart
		}
		return s.carts.Load(ctx, form.SessionID)
	}
	inputs := make([]cartApp.LineInput, len(form.Items))
	for i, l := range form.Items {
		inputs[i] = cartApp.LineInput{ProductID: l.ProductID, Volume: l.Volume, Quantity: l.Quantity}
	}
	return s.carts.Build(ctx, inputs, form.ComboID)
}
