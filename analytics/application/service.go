package application

import (
	"context"
	"fmt"

	"github.com/mervel/storefront/analytics/domain"
	catalog "github.com/mervel/storefront/catalog/domain"
	orders "github.com/mervel/storefront/orders/domain"
	"golang.org/x/sync/errgroup"
)

type ProductSource interface {
	List(ctx context.Context, filter catalog.ProductFilter) ([]*catalog.Product, error)
}

type OrderSource interface {
	Recent(ctx context.Context) ([]*orders.Order, error)
	Count(ctx context.Context, status orders.Status) (int64, error)
}

type AnalyticsService struct {
	products ProductSource
	orders   OrderSource
	currency string
}

func NewAnalyticsService(products ProductSource, orders OrderSource, currency string) *AnalyticsService {
	return &AnalyticsService{products: products, orders: orders, currency: currency}
}

// Dashboard loads the catalog, the recent orders and the order count concurrently.
func (s *AnalyticsService) Dashboard(ctx context.Context) (domain.Dashboard, error) {
	var (
		products []*catalog.Product
		recent   []*orders.Order
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = s.products.List(gctx, catalog.ProductFilter{})
		if err != nil {
			return fmt.Errorf("load products: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		recent, err = s.orders.Recent(gctx)
		if err != nil {
			return fmt.Errorf("load recent orders: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		total, err = s.orders.Count(gctx, "")
		if err != nil {
			return fmt.Errorf("count orders: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.Dashboard{}, err
	}
	return domain.BuildDashboard(products, recent, total), nil
}

func (s *AnalyticsService) Catalog(ctx context.Context) (domain.CatalogReport, error) {
	products, err := s.products.List(ctx, catalog.ProductFilter{})
	if err != nil {
		return domain.CatalogReport{}, fmt.Errorf("load products: %w", err)
	}
	return domain.BuildCatalogReport(products, s.currency), nil
}
