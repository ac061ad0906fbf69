package repository

import (
	"context"
	"testing"

	"github.com/mervel/storefront/imagery/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := NewGormStore(db)
	if err := store.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}
	return store
}

func exerciseStore(t *testing.T, store domain.ImageStore) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "mervel-img-v4-eclipse"); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	mustSet := func(k, v string) {
		if err := store.Set(ctx, k, v); err != nil {
			t.Fatalf("Set(%s) error: %v", k, err)
		}
	}
	mustSet("mervel-img-v4-eclipse", "data:image/png;base64,AAAA")
	mustSet("mervel-img-v4-eclipse", "https://cdn.example.com/eclipse.png")
	mustSet("mervel-img-v4-jade_lotus", "https://cdn.example.com/jade.png")
	mustSet("mervel-img-v5-eclipse", "https://cdn.example.com/eclipse-v5.png")

	got, ok, err := store.Get(ctx, "mervel-img-v4-eclipse")
	if err != nil || !ok || got != "https://cdn.example.com/eclipse.png" {
		t.Fatalf("expected overwritten value, got %q ok=%v err=%v", got, ok, err)
	}

	entries, err := store.Scan(ctx, "mervel-img-v4-")
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 v4 entries, got %+v", entries)
	}
	if entries[0].Key != "mervel-img-v4-eclipse" || entries[0].Size != len("https://cdn.example.com/eclipse.png") {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}

	if entries, _ := store.Scan(ctx, "mervel-img-v4-jade_"); len(entries) != 1 {
		t.Fatalf("expected literal underscore match, got %+v", entries)
	}

	n, err := store.Clear(ctx, "mervel-img-v4-")
	if err != nil || n != 2 {
		t.Fatalf("Clear() = %d, %v; want 2", n, err)
	}
	if _, ok, _ := store.Get(ctx, "mervel-img-v5-eclipse"); !ok {
		t.Fatalf("clearing v4 must not touch v5")
	}

	if err := store.Delete(ctx, "mervel-img-v5-eclipse"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if entries, _ := store.Scan(ctx, ""); len(entries) != 0 {
		t.Fatalf("expected empty store, got %+v", entries)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, NewMemoryStore())
}

func TestGormStore(t *testing.T) {
	t.Parallel()
	exerciseStore(t, newGormStore(t))
}
