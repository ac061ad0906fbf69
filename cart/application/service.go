package application

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/mervel/storefront/cart/domain"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	settingsDomain "github.com/mervel/storefront/core/settings/domain"
	"github.com/sirupsen/logrus"
)

// Catalog is the slice of the product service the cart prices against.
type Catalog interface {
	GetPublished(ctx context.Context, slug string) (*catalogDomain.Product, error)
	Collection(ctx context.Context, id string) (catalogDomain.Combo, []*catalogDomain.Product, error)
}

type PricingSource interface {
	GetStoreSettings(ctx context.Context) (settingsDomain.StoreSettings, error)
}

// LineInput is a requested product variant and quantity.
type LineInput struct {
	ProductID string `json:"product_id"`
	Volume    string `json:"volume"`
	Quantity  int    `json:"quantity"`
}

// sessionLockStripes bounds the lock table regardless of how many session IDs clients send.
const sessionLockStripes = 64

type CartService struct {
	store    domain.SessionStore
	catalog  Catalog
	settings PricingSource

	// serializes read-modify-write cycles on a session
	locks [sessionLockStripes]sync.Mutex
}

func NewCartService(store domain.SessionStore, catalog Catalog, settings PricingSource) *CartService {
	return &CartService{store: store, catalog: catalog, settings: settings}
}

func (s *CartService) lock(sessionID string) func() {
	mu := &s.locks[lockStripe(sessionID)]
	mu.Lock()
	return mu.Unlock
}

func lockStripe(sessionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(sessionID))
	return int(h.Sum32() % sessionLockStripes)
}

func (s *CartService) Pricing(ctx context.Context) (domain.Pricing, error) {
	st, err := s.settings.GetStoreSettings(ctx)
	if err != nil {
		return domain.Pricing{}, fmt.Errorf("load store settings: %w", err)
	}
	return domain.Pricing{ShippingFee: st.ShippingFee, FreeShippingThreshold: st.FreeShippingThreshold}, nil
}

// Quote prices a cart with the current store settings.
func (s *CartService) Quote(ctx context.Context, c *domain.Cart) (domain.Quote, error) {
	p, err := s.Pricing(ctx)
	if err != nil {
		return domain.Quote{}, err
	}
	return c.Quote(p), nil
}

func (s *CartService) Get(ctx context.Context, sessionID string) (domain.Quote, error) {
	if sessionID == "" {
		return domain.Quote{}, domain.ErrMissingSession
	}
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return domain.Quote{}, err
	}
	return s.Quote(ctx, c)
}

// Load returns the stored cart of a session.
func (s *CartService) Load(ctx context.Context, sessionID string) (*domain.Cart, error) {
	if sessionID == "" {
		return nil, domain.ErrMissingSession
	}
	return s.store.Get(ctx, sessionID)
}

func (s *CartService) mutate(ctx context.Context, sessionID string, fn func(c *domain.Cart) error) (domain.Quote, error) {
	if sessionID == "" {
		return domain.Quote{}, domain.ErrMissingSession
	}
	unlock := s.lock(sessionID)
	defer unlock()

	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return domain.Quote{}, err
	}
	if err := fn(c); err != nil {
		return domain.Quote{}, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return domain.Quote{}, fmt.Errorf("save cart: %w", err)
	}
	return s.Quote(ctx, c)
}

// AddItem adds one unit of the product variant. An empty volume picks the
// product's default volume.
func (s *CartService) AddItem(ctx context.Context, sessionID, productID, volume string) (domain.Quote, error) {
	line, err := s.line(ctx, productID, volume)
	if err != nil {
		return domain.Quote{}, err
	}
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.Add(line)
		return nil
	})
}

func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, key string, quantity int) (domain.Quote, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		if !c.UpdateQuantity(key, quantity) {
			return domain.ErrLineNotFound
		}
		return nil
	})
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID, key string) (domain.Quote, error) {
	return s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		if !c.Remove(key) {
			return domain.ErrLineNotFound
		}
		return nil
	})
}

// AddCombo adds the smallest variant of every product in the collection and
// attaches the combo discount.
func (s *CartService) AddCombo(ctx context.Context, sessionID, comboID string) (domain.Quote, error) {
	discount, lines, err := s.combo(ctx, comboID)
	if err != nil {
		return domain.Quote{}, err
	}
	q, err := s.mutate(ctx, sessionID, func(c *domain.Cart) error {
		c.AddCombo(discount, lines)
		return nil
	})
	if err == nil {
		logrus.Debugf("[CART] Combo %s added to session %s", comboID, sessionID)
	}
	return q, err
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrMissingSession
	}
	return s.store.Delete(ctx, sessionID)
}

// Build prices requested lines against the catalog into a detached cart.
// A non-empty comboID attaches that combo's discount.
func (s *CartService) Build(ctx context.Context, inputs []LineInput, comboID string) (*domain.Cart, error) {
	c := domain.New("")
	for _, in := range inputs {
		if in.Quantity <= 0 {
			continue
		}
		line, err := s.line(ctx, in.ProductID, in.Volume)
		if err != nil {
			return nil, err
		}
		held := c.Quantity(line.Key())
		c.Add(line)
		c.UpdateQuantity(line.Key(), held+in.Quantity)
	}
	if comboID != "" {
		discount, _, err := s.combo(ctx, comboID)
		if err != nil {
			return nil, err
		}
		c.Combo = &discount
	}
	return c, nil
}

func (s *CartService) line(ctx context.Context, productID, volume string) (domain.Line, error) {
	p, err := s.catalog.GetPublished(ctx, strings.TrimSpace(productID))
	if err != nil {
		return domain.Line{}, err
	}
	if volume == "" {
		volume = p.DefaultVolume
	}
	price, ok := p.PriceFor(volume)
	if !ok {
		return domain.Line{}, fmt.Errorf("%w: %s %s", domain.ErrVariantNotFound, p.Slug, volume)
	}
	return domain.Line{
		ProductID: p.Slug,
		Name:      p.Name,
		Category:  p.Category,
		ImageURL:  p.ImageURL,
		Volume:    volume,
		Price:     price,
	}, nil
}

func (s *CartService) combo(ctx context.Context, comboID string) (domain.ComboDiscount, []domain.Line, error) {
	combo, products, err := s.catalog.Collection(ctx, comboID)
	if err != nil {
		return domain.ComboDiscount{}, nil, err
	}
	st, err := s.settings.GetStoreSettings(ctx)
	if err != nil {
		return domain.ComboDiscount{}, nil, fmt.Errorf("load store settings: %w", err)
	}

	lines := make([]domain.Line, 0, len(products))
	for _, p := range products {
		if !p.IsActive || len(p.Variants) == 0 {
			continue
		}
		smallest := p.Variants[0]
		for _, v := range p.Variants[1:] {
			if v.Price < smallest.Price {
				smallest = v
			}
		}
		lines = append(lines, domain.Line{
			ProductID: p.Slug,
			Name:      p.Name,
			Category:  p.Category,
			ImageURL:  p.ImageURL,
			Volume:    smallest.Volume,
			Price:     smallest.Price,
		})
	}

	return domain.ComboDiscount{
		ComboID:         combo.ID,
		ComboName:       combo.Name,
		DiscountPercent: st.ComboDiscount,
		ProductIDs:      combo.ProductIDs,
	}, lines, nil
}
