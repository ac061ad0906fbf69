package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mervel/storefront/catalog/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) *ProductGormRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := NewProductGormRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}
	return repo
}

func seedProduct(t *testing.T, repo *ProductGormRepository, slug string, active bool, createdAt time.Time) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Slug:      slug,
		Name:      slug,
		Category:  domain.CategoryWoody,
		Variants:  []domain.Variant{{Volume: "50ml", Price: 2500}, {Volume: "100ml", Price: 4200}},
		Notes:     domain.Notes{Top: []string{"bergamot"}},
		Stock:     10,
		IsActive:  active,
		CreatedAt: createdAt,
	}
	if err := repo.Create(context.Background(), p); err != nil {
		t.Fatalf("Create(%s) error: %v", slug, err)
	}
	return p
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	created := seedProduct(t, repo, "midnight-fern", true, time.Now())
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	got, err := repo.GetBySlug(ctx, "midnight-fern")
	if err != nil {
		t.Fatalf("GetBySlug() error: %v", err)
	}
	if len(got.Variants) != 2 || got.Variants[1].Price != 4200 {
		t.Fatalf("variants not round-tripped: %+v", got.Variants)
	}
	if got.DefaultVolume != domain.DefaultVolume {
		t.Fatalf("expected default volume, got %q", got.DefaultVolume)
	}
	if len(got.Notes.Top) != 1 || got.Notes.Heart == nil {
		t.Fatalf("notes not round-tripped: %+v", got.Notes)
	}

	if _, err := repo.GetBySlug(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestProductRepository_DuplicateSlug(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	seedProduct(t, repo, "velvet-rose", true, time.Now())

	err := repo.Create(context.Background(), &domain.Product{Slug: "velvet-rose", Name: "dup"})
	if !errors.Is(err, domain.ErrDuplicateSlug) {
		t.Fatalf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestProductRepository_ListActiveNewestFirst(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)

	base := time.Now().Add(-time.Hour)
	seedProduct(t, repo, "old", true, base)
	seedProduct(t, repo, "hidden", false, base.Add(time.Minute))
	seedProduct(t, repo, "new", true, base.Add(2*time.Minute))

	list, err := repo.List(ctx, domain.ProductFilter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 2 || list[0].Slug != "new" || list[1].Slug != "old" {
		t.Fatalf("unexpected order: %v", slugs(list))
	}

	all, err := repo.List(ctx, domain.ProductFilter{})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 products, got %d (%v)", len(all), err)
	}
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := newTestRepo(t)
	p := seedProduct(t, repo, "gold-resin", true, time.Now())

	p.Stock = 3
	p.IsActive = false
	if err := repo.Update(ctx, p); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, _ := repo.GetByID(ctx, p.ID)
	if got.Stock != 3 || got.IsActive {
		t.Fatalf("update not persisted: %+v", got)
	}

	if err := repo.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if err := repo.Delete(ctx, p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on second delete, got %v", err)
	}
}

func TestProductRepository_ListBySlugs(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	seedProduct(t, repo, "a", true, time.Now())
	seedProduct(t, repo, "b", true, time.Now())

	got, err := repo.ListBySlugs(context.Background(), []string{"a", "zzz"})
	if err != nil {
		t.Fatalf("ListBySlugs() error: %v", err)
	}
	if len(got) != 1 || got[0].Slug != "a" {
		t.Fatalf("unexpected result: %v", slugs(got))
	}
}

func slugs(list []*domain.Product) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.Slug
	}
	return out
}
