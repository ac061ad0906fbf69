package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/cart/application"
	"github.com/mervel/storefront/cart/repository"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	settingsDomain "github.com/mervel/storefront/core/settings/domain"
	"github.com/mervel/storefront/ui/rest/middleware"
)

type stubCatalog struct{}

func (stubCatalog) GetPublished(_ context.Context, slug string) (*catalogDomain.Product, error) {
	if slug != "velvet-rose" {
		return nil, catalogDomain.ErrProductNotFound
	}
	return &catalogDomain.Product{
		Slug:          "velvet-rose",
		Name:          "Velvet Rose",
		DefaultVolume: "50ml",
		IsActive:      true,
		Variants:      []catalogDomain.Variant{{Volume: "10ml", Price: 1395}, {Volume: "50ml", Price: 3100}},
	}, nil
}

func (stubCatalog) Collection(context.Context, string) (catalogDomain.Combo, []*catalogDomain.Product, error) {
	return catalogDomain.Combo{}, nil, catalogDomain.ErrComboNotFound
}

type stubSettings struct{}

func (stubSettings) GetStoreSettings(context.Context) (settingsDomain.StoreSettings, error) {
	return settingsDomain.StoreSettings{ShippingFee: 120, FreeShippingThreshold: 8000, ComboDiscount: 0.1}, nil
}

type envelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Results struct {
		TotalItems int   `json:"total_items"`
		Subtotal   int64 `json:"subtotal"`
		Total      int64 `json:"total"`
	} `json:"results"`
}

func newTestApp() *fiber.App {
	app := fiber.New()
	app.Use(middleware.Recovery())
	svc := application.NewCartService(repository.NewMemoryStore(0), stubCatalog{}, stubSettings{})
	NewCartHandler(svc).RegisterRoutes(app.Group("/api"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, session, body string) (*http.Response, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()
	var out envelope
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestCartHandler_SessionFlow(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	resp, _ := do(t, app, http.MethodPost, "/api/cart/items", "", `{"product_id":"velvet-rose"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	session := resp.Header.Get(SessionHeader)
	if session == "" {
		t.Fatalf("expected a minted session header")
	}

	_, body := do(t, app, http.MethodPost, "/api/cart/items", session, `{"product_id":"velvet-rose","volume":"10ml"}`)
	if body.Results.TotalItems != 2 || body.Results.Subtotal != 4495 || body.Results.Total != 4615 {
		t.Fatalf("unexpected quote: %+v", body.Results)
	}

	_, body = do(t, app, http.MethodPatch, "/api/cart/items", session, `{"product_id":"velvet-rose","volume":"50ml","quantity":3}`)
	if body.Results.TotalItems != 4 {
		t.Fatalf("expected 4 items after update, got %d", body.Results.TotalItems)
	}

	resp, _ = do(t, app, http.MethodDelete, "/api/cart", session, "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	_, body = do(t, app, http.MethodGet, "/api/cart", session, "")
	if body.Results.TotalItems != 0 {
		t.Fatalf("expected empty cart, got %d items", body.Results.TotalItems)
	}
}

func TestCartHandler_Errors(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"missing product id", http.MethodPost, "/api/cart/items", `{}`, http.StatusBadRequest},
		{"unknown product", http.MethodPost, "/api/cart/items", `{"product_id":"ghost"}`, http.StatusNotFound},
		{"unknown volume", http.MethodPost, "/api/cart/items", `{"product_id":"velvet-rose","volume":"5ml"}`, http.StatusBadRequest},
		{"unknown line", http.MethodDelete, "/api/cart/items", `{"key":"ghost::10ml"}`, http.StatusNotFound},
		{"unknown combo", http.MethodPost, "/api/cart/combos/ghost", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		resp, _ := do(t, app, tc.method, tc.path, "s-err", tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.StatusCode)
		}
	}
}

func TestCartHandler_QuoteLines(t *testing.T) {
	t.Parallel()
	app := newTestApp()

	_, body := do(t, app, http.MethodPost, "/api/cart/quote", "", `{"items":[{"product_id":"velvet-rose","volume":"50ml","quantity":3}]}`)
	if body.Results.Subtotal != 9300 || body.Results.Total != 9300 {
		t.Fatalf("unexpected quote: %+v", body.Results)
	}
}
