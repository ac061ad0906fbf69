package domain

import "context"

// ProductRepository persists catalog products.
type ProductRepository interface {
	Create(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
	Delete(ctx context.Context, id string) error

	GetByID(ctx context.Context, id string) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	ListBySlugs(ctx context.Context, slugs []string) ([]*Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*Product, error)
	Count(ctx context.Context) (int64, error)
}
