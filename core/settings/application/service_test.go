package application

import (
	"context"
	"testing"

	coreconfig "github.com/mervel/storefront/core/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *SettingsService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &coreconfig.Config{
		Storefront: coreconfig.StorefrontConfig{ShippingFee: 120, FreeShippingThreshold: 8000, ComboDiscount: 0.1},
		Imagery:    coreconfig.ImageryConfig{CachePrefix: "mervel-img-v4-"},
	}
	svc := NewSettingsService(db, cfg)
	if err := svc.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}
	return svc
}

func TestGetStoreSettings_DefaultsAndOverrides(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	got, err := svc.GetStoreSettings(ctx)
	if err != nil {
		t.Fatalf("GetStoreSettings() error: %v", err)
	}
	if got.ShippingFee != 120 || got.FreeShippingThreshold != 8000 || got.ComboDiscount != 0.1 {
		t.Fatalf("unexpected defaults: %+v", got)
	}

	if err := svc.SetShippingFee(ctx, 150); err != nil {
		t.Fatalf("SetShippingFee() error: %v", err)
	}
	if err := svc.SetComboDiscount(ctx, 0.15); err != nil {
		t.Fatalf("SetComboDiscount() error: %v", err)
	}
	if err := svc.SetComboDiscount(ctx, 1.5); err == nil {
		t.Fatalf("expected out-of-range discount to be rejected")
	}

	got, err = svc.GetStoreSettings(ctx)
	if err != nil {
		t.Fatalf("GetStoreSettings() error: %v", err)
	}
	if got.ShippingFee != 150 || got.ComboDiscount != 0.15 {
		t.Fatalf("overrides not applied: %+v", got)
	}
}

func TestBumpImageCachePrefix(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc := newTestService(t)

	next, err := svc.BumpImageCachePrefix(ctx)
	if err != nil {
		t.Fatalf("BumpImageCachePrefix() error: %v", err)
	}
	if next != "mervel-img-v5-" {
		t.Fatalf("expected mervel-img-v5-, got %q", next)
	}
	current, err := svc.ImageCachePrefix(ctx)
	if err != nil || current != next {
		t.Fatalf("expected stored prefix %q, got %q (%v)", next, current, err)
	}
}

func TestNextCachePrefix(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"mervel-img-v4-":  "mervel-img-v5-",
		"mervel-img-v19-": "mervel-img-v20-",
		"mervel-img":      "mervel-img-v2-",
		"":                "v2-",
	}
	for in, want := range cases {
		if got := NextCachePrefix(in); got != want {
			t.Fatalf("NextCachePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
