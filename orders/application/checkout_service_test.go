package application

import (
	"context"
	"errors"
	"testing"

	cartApp "github.com/mervel/storefront/cart/application"
	cartRepo "github.com/mervel/storefront/cart/repository"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	settingsDomain "github.com/mervel/storefront/core/settings/domain"
	"github.com/mervel/storefront/orders/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type catalogStub map[string]*catalogDomain.Product

func (c catalogStub) GetPublished(_ context.Context, slug string) (*catalogDomain.Product, error) {
	p, ok := c[slug]
	if !ok {
		return nil, catalogDomain.ErrProductNotFound
	}
	return p, nil
}

func (c catalogStub) Collection(_ context.Context, id string) (catalogDomain.Combo, []*catalogDomain.Product, error) {
	combo, ok := catalogDomain.FindCombo(id)
	if !ok {
		return catalogDomain.Combo{}, nil, catalogDomain.ErrComboNotFound
	}
	var out []*catalogDomain.Product
	for _, slug := range combo.ProductIDs {
		if p, ok := c[slug]; ok {
			out = append(out, p)
		}
	}
	return combo, out, nil
}

type settingsStub struct{}

func (settingsStub) GetStoreSettings(context.Context) (settingsDomain.StoreSettings, error) {
	return settingsDomain.StoreSettings{ShippingFee: 120, FreeShippingThreshold: 8000, ComboDiscount: 0.1}, nil
}

func perfume(slug string, small, large int64) *catalogDomain.Product {
	return &catalogDomain.Product{
		Slug: slug, Name: slug, DefaultVolume: "100ml", IsActive: true,
		Variants: []catalogDomain.Variant{{Volume: "10ml", Price: small}, {Volume: "100ml", Price: large}},
	}
}

func newCheckout(t *testing.T) (*CheckoutService, *fakeRepo, *cartApp.CartService, *recordingSink) {
	t.Helper()
	catalog := catalogStub{
		"midnight-fern": perfume("midnight-fern", 1250, 4500),
		"velvet-rose":   perfume("velvet-rose", 1395, 4800),
		"forest-rain":   perfume("forest-rain", 1180, 4300),
	}
	carts := cartApp.NewCartService(cartRepo.NewMemoryStore(0), catalog, settingsStub{})
	repo := newFakeRepo()
	sink := &recordingSink{}
	events := NewBroadcaster(nil)
	events.Subscribe(sink)
	return NewCheckoutService(repo, carts, events), repo, carts, sink
}

func validForm() *domain.CheckoutForm {
	return &domain.CheckoutForm{
		FullName:   " Nadia Rahman ",
		Email:      "nadia@example.com",
		Phone:      "01712345678",
		Address:    "House 4, Road 2",
		City:       "Dhaka",
		PostalCode: "1212",
	}
}

func TestPlaceOrder_ComboDiscountAndShipping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, repo, _, sink := newCheckout(t)

	form := validForm()
	form.ComboID = "dark-elegance"
	form.Items = []domain.CheckoutLine{
		{ProductID: "midnight-fern", Volume: "10ml", Quantity: 1},
		{ProductID: "velvet-rose", Volume: "10ml", Quantity: 1},
		{ProductID: "forest-rain", Volume: "10ml", Quantity: 1},
	}

	receipt, err := svc.PlaceOrder(ctx, form, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3825), receipt.Subtotal)
	assert.Equal(t, int64(383), receipt.ComboDiscountAmount)
	assert.Equal(t, int64(120), receipt.ShippingCost)
	assert.Equal(t, int64(3562), receipt.Total)
	assert.Equal(t, "Dark Elegance", receipt.ComboName)

	order, err := repo.FindByID(ctx, receipt.OrderID)
	require.NoError(t, err)
	assert.Equal(t, "Nadia Rahman", order.CustomerName)
	assert.Equal(t, "House 4, Road 2, Dhaka 1212", order.ShippingAddress)
	assert.Nil(t, order.Notes)
	assert.Equal(t, int64(3825), order.Subtotal)
	assert.Equal(t, int64(383), order.Discount)
	assert.Equal(t, int64(3562), order.Total)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, domain.PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, []domain.EventType{domain.EventInsert}, sink.Types())
}

func TestPlaceOrder_FreeShippingFromSessionCart(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _, carts, _ := newCheckout(t)

	_, err := carts.AddItem(ctx, "sess-1", "velvet-rose", "100ml")
	require.NoError(t, err)
	_, err = carts.AddItem(ctx, "sess-1", "forest-rain", "100ml")
	require.NoError(t, err)

	form := validForm()
	form.SessionID = "sess-1"
	form.Notes = "Ring twice"
	receipt, err := svc.PlaceOrder(ctx, form, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9100), receipt.Total)
	assert.Equal(t, int64(0), receipt.ShippingCost)

	q, err := carts.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, q.Items, "session cart is cleared after checkout")
}

func TestPlaceOrder_Rejections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, repo, _, _ := newCheckout(t)

	_, err := svc.PlaceOrder(ctx, validForm(), nil)
	assert.True(t, errors.Is(err, domain.ErrEmptyCart))

	bad := validForm()
	bad.Email = "not-an-email"
	bad.Items = []domain.CheckoutLine{{ProductID: "velvet-rose", Quantity: 1}}
	_, err = svc.PlaceOrder(ctx, bad, nil)
	var verr pkgError.ValidationError
	assert.True(t, errors.As(err, &verr))

	ghost := validForm()
	ghost.Items = []domain.CheckoutLine{{ProductID: "ghost", Quantity: 1}}
	_, err = svc.PlaceOrder(ctx, ghost, nil)
	assert.True(t, errors.Is(err, catalogDomain.ErrProductNotFound))

	assert.Equal(t, 0, repo.Calls())
}
