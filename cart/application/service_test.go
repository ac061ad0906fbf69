package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/mervel/storefront/cart/domain"
	"github.com/mervel/storefront/cart/repository"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	settingsDomain "github.com/mervel/storefront/core/settings/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalog struct {
	products map[string]*catalogDomain.Product
}

func (f *fakeCatalog) GetPublished(_ context.Context, slug string) (*catalogDomain.Product, error) {
	p, ok := f.products[slug]
	if !ok || !p.IsActive {
		return nil, catalogDomain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) Collection(_ context.Context, id string) (catalogDomain.Combo, []*catalogDomain.Product, error) {
	combo, ok := catalogDomain.FindCombo(id)
	if !ok {
		return catalogDomain.Combo{}, nil, catalogDomain.ErrComboNotFound
	}
	var out []*catalogDomain.Product
	for _, slug := range combo.ProductIDs {
		if p, ok := f.products[slug]; ok {
			out = append(out, p)
		}
	}
	return combo, out, nil
}

type fakeSettings struct{ settingsDomain.StoreSettings }

func (f fakeSettings) GetStoreSettings(context.Context) (settingsDomain.StoreSettings, error) {
	return f.StoreSettings, nil
}

func product(slug string, prices ...int64) *catalogDomain.Product {
	p := &catalogDomain.Product{Slug: slug, Name: slug, DefaultVolume: "100ml", IsActive: true}
	volumes := []string{"10ml", "50ml", "100ml"}
	for i, price := range prices {
		p.Variants = append(p.Variants, catalogDomain.Variant{Volume: volumes[i], Price: price})
	}
	return p
}

func newTestService() *CartService {
	catalog := &fakeCatalog{products: map[string]*catalogDomain.Product{
		"midnight-fern": product("midnight-fern", 1250, 2900, 4500),
		"velvet-rose":   product("velvet-rose", 1395, 3100, 4800),
		"forest-rain":   product("forest-rain", 1180, 2750, 4300),
		"oud-mystique":  product("oud-mystique", 1800, 3900, 6200),
	}}
	settings := fakeSettings{settingsDomain.StoreSettings{ShippingFee: 120, FreeShippingThreshold: 8000, ComboDiscount: 0.1}}
	return NewCartService(repository.NewMemoryStore(0), catalog, settings)
}

func TestCartService_AddItemDefaultsVolume(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	q, err := svc.AddItem(ctx, "s1", "oud-mystique", "")
	require.NoError(t, err)
	require.Len(t, q.Items, 1)
	assert.Equal(t, "100ml", q.Items[0].Volume)
	assert.Equal(t, int64(6200), q.Subtotal)
	assert.Equal(t, int64(120), q.Shipping)

	q, err = svc.AddItem(ctx, "s1", "oud-mystique", "100ml")
	require.NoError(t, err)
	assert.Equal(t, int64(0), q.Shipping)
	assert.Equal(t, int64(12400), q.Total)

	_, err = svc.AddItem(ctx, "s1", "oud-mystique", "30ml")
	assert.True(t, errors.Is(err, domain.ErrVariantNotFound))
	_, err = svc.AddItem(ctx, "s1", "unknown", "")
	assert.True(t, errors.Is(err, catalogDomain.ErrProductNotFound))
	_, err = svc.AddItem(ctx, "", "oud-mystique", "")
	assert.True(t, errors.Is(err, domain.ErrMissingSession))
}

func TestCartService_ComboLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	q, err := svc.AddCombo(ctx, "s1", "dark-elegance")
	require.NoError(t, err)
	require.NotNil(t, q.ComboDiscount)
	assert.Equal(t, 3, q.TotalItems)
	assert.Equal(t, int64(3825), q.Subtotal)
	assert.Equal(t, int64(383), q.ComboDiscountAmount)

	q, err = svc.RemoveItem(ctx, "s1", domain.Key("velvet-rose", "10ml"))
	require.NoError(t, err)
	assert.Nil(t, q.ComboDiscount)
	assert.Equal(t, int64(0), q.ComboDiscountAmount)

	_, err = svc.RemoveItem(ctx, "s1", domain.Key("velvet-rose", "10ml"))
	assert.True(t, errors.Is(err, domain.ErrLineNotFound))

	_, err = svc.AddCombo(ctx, "s1", "nope")
	assert.True(t, errors.Is(err, catalogDomain.ErrComboNotFound))

	require.NoError(t, svc.Clear(ctx, "s1"))
	q, err = svc.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, q.Items)
}

func TestCartService_Build(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	c, err := svc.Build(ctx, []LineInput{
		{ProductID: "midnight-fern", Volume: "10ml", Quantity: 2},
		{ProductID: "velvet-rose", Volume: "10ml", Quantity: 1},
		{ProductID: "forest-rain", Volume: "10ml", Quantity: 1},
		{ProductID: "oud-mystique", Volume: "10ml", Quantity: 0},
	}, "dark-elegance")
	require.NoError(t, err)
	assert.Equal(t, 4, c.TotalItems())
	assert.Equal(t, int64(1250*2+1395+1180), c.Subtotal())
	assert.Equal(t, int64(508), c.ComboDiscountAmount())
}

func TestCartService_ConcurrentAddsOnOneSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddItem(ctx, "shared", "velvet-rose", "50ml")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	q, err := svc.Get(ctx, "shared")
	require.NoError(t, err)
	require.Len(t, q.Items, 1)
	assert.Equal(t, 20, q.Items[0].Quantity)
}

func TestLockStripe_BoundedForAnySessionID(t *testing.T) {
	t.Parallel()
	seen := map[int]bool{}
	for i := 0; i < 10000; i++ {
		id := fmt.Sprintf("session-%d", i)
		stripe := lockStripe(id)
		require.GreaterOrEqual(t, stripe, 0)
		require.Less(t, stripe, sessionLockStripes)
		assert.Equal(t, stripe, lockStripe(id), "a session always maps to the same lock")
		seen[stripe] = true
	}
	assert.LessOrEqual(t, len(seen), sessionLockStripes)
}
