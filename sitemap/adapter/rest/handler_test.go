package rest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	catalog "github.com/mervel/storefront/catalog/domain"
	"github.com/mervel/storefront/sitemap/application"
)

type stubProducts struct{}

func (stubProducts) List(context.Context, catalog.ProductFilter) ([]*catalog.Product, error) {
	return []*catalog.Product{{Slug: "gold-resin"}}, nil
}

func (stubProducts) Collections() []catalog.Combo { return nil }

func TestSitemapHandler(t *testing.T) {
	app := fiber.New()
	NewSitemapHandler(application.NewBuilder("https://shop.example.com", stubProducts{}, nil)).RegisterRoutes(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Fatalf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "<loc>https://shop.example.com/product/gold-resin</loc>") {
		t.Fatalf("expected product url in sitemap:\n%s", body)
	}
}
