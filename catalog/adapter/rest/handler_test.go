package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/catalog/application"
	"github.com/mervel/storefront/catalog/repository"
	"github.com/mervel/storefront/pkg/utils"
	"github.com/mervel/storefront/ui/rest/middleware"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewProductGormRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}

	app := fiber.New()
	app.Use(middleware.Recovery())
	handler := NewProductHandler(application.NewProductService(repo), nil)
	handler.RegisterRoutes(app.Group("/api"), app.Group("/api/admin"))
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, utils.ResponseData) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()
	var out utils.ResponseData
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestProductHandler_CreateThenFetch(t *testing.T) {
	app := newTestApp(t)

	body := `{"slug":"jade-lotus","name":"Jade Lotus","category":"floral","variants":[{"volume":"100ml","price":4800}],"stock":12}`
	resp, out := do(t, app, http.MethodPost, "/api/admin/products", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, out.Message)
	}

	resp, out = do(t, app, http.MethodGet, "/api/products/jade-lotus", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	product, _ := out.Results.(map[string]any)
	if product["name"] != "Jade Lotus" || product["is_active"] != true {
		t.Fatalf("unexpected product %v", out.Results)
	}

	resp, out = do(t, app, http.MethodPost, "/api/admin/products", body)
	if resp.StatusCode != http.StatusConflict || out.Code != "CONFLICT" {
		t.Fatalf("expected 409 CONFLICT, got %d %q", resp.StatusCode, out.Code)
	}
}

func TestProductHandler_Errors(t *testing.T) {
	app := newTestApp(t)

	resp, out := do(t, app, http.MethodGet, "/api/products/missing", "")
	if resp.StatusCode != http.StatusNotFound || out.Code != "NOT_FOUND_ERROR" {
		t.Fatalf("expected 404, got %d %q", resp.StatusCode, out.Code)
	}

	resp, out = do(t, app, http.MethodPost, "/api/admin/products", `{"slug":"","name":""}`)
	if resp.StatusCode != http.StatusBadRequest || out.Code != "VALIDATION_ERROR" {
		t.Fatalf("expected 400, got %d %q", resp.StatusCode, out.Code)
	}

	resp, _ = do(t, app, http.MethodGet, "/api/collections/golden-opulence", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected collection lookup to succeed with no products, got %d", resp.StatusCode)
	}
}
