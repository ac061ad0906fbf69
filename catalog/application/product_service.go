package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mervel/storefront/catalog/domain"
	"github.com/mervel/storefront/validations"
	"github.com/sirupsen/logrus"
)

// ProductListing is the storefront projection of a product.
type ProductListing struct {
	*domain.Product
	Price int64 `json:"price"`
}

// ProductChangeHook is notified after an admin mutation (used to invalidate image caches).
type ProductChangeHook func(ctx context.Context, action string, product *domain.Product)

type ProductService struct {
	repo  domain.ProductRepository
	hooks []ProductChangeHook
}

func NewProductService(repo domain.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) OnChange(hook ProductChangeHook) {
	s.hooks = append(s.hooks, hook)
}

func (s *ProductService) notify(ctx context.Context, action string, p *domain.Product) {
	for _, h := range s.hooks {
		h(ctx, action, p)
	}
}

// ListActive returns active products newest first, priced at their cheapest variant.
func (s *ProductService) ListActive(ctx context.Context, category string) ([]ProductListing, error) {
	products, err := s.repo.List(ctx, domain.ProductFilter{ActiveOnly: true, Category: category})
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}
	out := make([]ProductListing, len(products))
	for i, p := range products {
		out[i] = ProductListing{Product: p, Price: p.MinPrice()}
	}
	return out, nil
}

// GetPublished resolves an active product by slug.
func (s *ProductService) GetPublished(ctx context.Context, slug string) (*domain.Product, error) {
	p, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) GetBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ProductService) ListBySlugs(ctx context.Context, slugs []string) ([]*domain.Product, error) {
	return s.repo.ListBySlugs(ctx, slugs)
}

// List returns every product (admin view), newest first.
func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return s.repo.List(ctx, filter)
}

func (s *ProductService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *ProductService) Create(ctx context.Context, p *domain.Product) error {
	normalize(p)
	if err := validations.ValidateProduct(ctx, p); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return err
	}
	logrus.Infof("[CATALOG] Product %s created", p.Slug)
	s.notify(ctx, "create", p)
	return nil
}

func (s *ProductService) Update(ctx context.Context, p *domain.Product) error {
	normalize(p)
	if err := validations.ValidateProduct(ctx, p); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return err
	}
	logrus.Infof("[CATALOG] Product %s updated", p.Slug)
	s.notify(ctx, "update", p)
	return nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	logrus.Infof("[CATALOG] Product %s deleted", p.Slug)
	s.notify(ctx, "delete", p)
	return nil
}

// Seed inserts every launch product whose slug is not in the catalog yet and
// returns how many were created.
func (s *ProductService) Seed(ctx context.Context) (int, error) {
	created := 0
	for _, p := range domain.SeedProducts() {
		if _, err := s.repo.GetBySlug(ctx, p.Slug); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrProductNotFound) {
			return created, fmt.Errorf("seed %s: %w", p.Slug, err)
		}
		if err := s.Create(ctx, p); err != nil {
			return created, fmt.Errorf("seed %s: %w", p.Slug, err)
		}
		created++
	}
	return created, nil
}

// Collections returns the curated combos.
func (s *ProductService) Collections() []domain.Combo {
	return domain.Combos()
}

// Collection resolves a combo with its products; products missing from the catalog are skipped.
func (s *ProductService) Collection(ctx context.Context, id string) (domain.Combo, []*domain.Product, error) {
	combo, ok := domain.FindCombo(id)
	if !ok {
		return domain.Combo{}, nil, domain.ErrComboNotFound
	}
	products, err := s.repo.ListBySlugs(ctx, combo.ProductIDs)
	if err != nil {
		return combo, nil, fmt.Errorf("load collection products: %w", err)
	}
	bySlug := make(map[string]*domain.Product, len(products))
	for _, p := range products {
		bySlug[p.Slug] = p
	}
	ordered := make([]*domain.Product, 0, len(combo.ProductIDs))
	for _, slug := range combo.ProductIDs {
		if p, ok := bySlug[slug]; ok {
			ordered = append(ordered, p)
		}
	}
	return combo, ordered, nil
}

// IsNotFound reports whether err means the product does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrProductNotFound) || errors.Is(err, domain.ErrComboNotFound)
}

func normalize(p *domain.Product) {
	p.Slug = strings.ToLower(strings.TrimSpace(p.Slug))
	p.Name = strings.TrimSpace(p.Name)
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))
	if p.DefaultVolume == "" {
		p.DefaultVolume = domain.DefaultVolume
	}
	p.SortVariants()
}
