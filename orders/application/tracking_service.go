package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	"github.com/mervel/storefront/orders/domain"
	"github.com/mervel/storefront/validations"
)

const trackingLimit = 10

// ProductImages resolves product images for tracked order lines.
type ProductImages interface {
	ListBySlugs(ctx context.Context, slugs []string) ([]*catalogDomain.Product, error)
}

// TrackedItem is an order line as shown on the public tracking page.
type TrackedItem struct {
	ProductID *string `json:"product_id"`
	Name      string  `json:"name"`
	Volume    string  `json:"volume"`
	Quantity  int     `json:"quantity"`
	Image     *string `json:"image"`
}

// TrackedOrder is the public view of an order. The customer name is masked
// and contact details are left out.
type TrackedOrder struct {
	ID              string        `json:"id"`
	ShortID         string        `json:"short_id"`
	CustomerName    string        `json:"customer_name"`
	Items           []TrackedItem `json:"items"`
	Subtotal        int64         `json:"subtotal"`
	Discount        int64         `json:"discount"`
	Total           int64         `json:"total"`
	Status          domain.Status `json:"status"`
	ShippingAddress string        `json:"shipping_address"`
	CreatedAt       time.Time     `json:"created_at"`
}

type TrackingResult struct {
	Orders []TrackedOrder `json:"orders"`
	Order  TrackedOrder   `json:"order"`
}

type TrackingService struct {
	repo     domain.OrderRepository
	products ProductImages
}

func NewTrackingService(repo domain.OrderRepository, products ProductImages) *TrackingService {
	return &TrackingService{repo: repo, products: products}
}

// Track looks orders up by id, then exact phone, then phone suffix. Up to ten
// orders are returned, newest first.
func (s *TrackingService) Track(ctx context.Context, query string) (*TrackingResult, error) {
	q, err := validations.ValidateTrackingQuery(query)
	if err != nil {
		return nil, err
	}

	orders, err := s.find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, domain.ErrOrderNotFound
	}

	images, err := s.images(ctx, orders)
	if err != nil {
		return nil, err
	}

	mapped := make([]TrackedOrder, len(orders))
	for i, o := range orders {
		mapped[i] = toTracked(o, images)
	}
	return &TrackingResult{Orders: mapped, Order: mapped[0]}, nil
}

func (s *TrackingService) find(ctx context.Context, q string) ([]*domain.Order, error) {
	if len(q) == 36 && uuid.Validate(q) == nil {
		o, err := s.repo.FindByID(ctx, strings.ToLower(q))
		switch {
		case err == nil:
			return []*domain.Order{o}, nil
		case !errors.Is(err, domain.ErrOrderNotFound):
			return nil, fmt.Errorf("find order by id: %w", err)
		}
	}

	orders, err := s.repo.FindByPhone(ctx, q, trackingLimit)
	if err != nil {
		return nil, fmt.Errorf("find orders by phone: %w", err)
	}
	if len(orders) > 0 {
		return orders, nil
	}

	orders, err = s.repo.FindByPhoneSuffix(ctx, q, trackingLimit)
	if err != nil {
		return nil, fmt.Errorf("find orders by phone suffix: %w", err)
	}
	return orders, nil
}

func (s *TrackingService) images(ctx context.Context, orders []*domain.Order) (map[string]string, error) {
	seen := make(map[string]bool)
	var slugs []string
	for _, o := range orders {
		for _, item := range o.Items {
			if item.ProductID != "" && !seen[item.ProductID] {
				seen[item.ProductID] = true
				slugs = append(slugs, item.ProductID)
			}
		}
	}
	out := make(map[string]string)
	if len(slugs) == 0 || s.products == nil {
		return out, nil
	}

	products, err := s.products.ListBySlugs(ctx, slugs)
	if err != nil {
		return nil, fmt.Errorf("load product images: %w", err)
	}
	for _, p := range products {
		if p.ImageURL != "" {
			out[p.Slug] = p.ImageURL
		}
	}
	return out, nil
}

func toTracked(o *domain.Order, images map[string]string) TrackedOrder {
	items := make([]TrackedItem, len(o.Items))
	for i, item := range o.Items {
		t := TrackedItem{Name: item.Name, Volume: item.Volume, Quantity: item.Quantity}
		if item.ProductID != "" {
			pid := item.ProductID
			t.ProductID = &pid
		}
		switch {
		case item.ImageURL != "":
			img := item.ImageURL
			t.Image = &img
		case images[item.ProductID] != "":
			img := images[item.ProductID]
			t.Image = &img
		}
		items[i] = t
	}

	shortID := o.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	return TrackedOrder{
		ID:              o.ID,
		ShortID:         strings.ToUpper(shortID),
		CustomerName:    MaskName(o.CustomerName),
		Items:           items,
		Subtotal:        o.Subtotal,
		Discount:        o.Discount,
		Total:           o.Total,
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
	}
}

// MaskName keeps the first and last character of names longer than three
// characters: "Nadia" becomes "N***a".
func MaskName(name string) string {
	r := []rune(name)
	if len(r) <= 3 {
		return name
	}
	return string(r[0]) + "***" + string(r[len(r)-1])
}
