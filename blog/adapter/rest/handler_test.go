package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/blog/application"
	"github.com/mervel/storefront/blog/repository"
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

	repo := repository.NewPostGormRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}

	app := fiber.New()
	app.Use(middleware.Recovery())
	NewBlogHandler(application.NewPostService(repo)).RegisterRoutes(app.Group("/api"), app.Group("/api/admin"))
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

func TestBlogHandler_DraftThenPublish(t *testing.T) {
	app := newTestApp(t)

	resp, out := do(t, app, http.MethodPost, "/api/admin/blog", `{"title":"Wearing Oud in Summer","slug":"oud-in-summer","content":"## Light touch"}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, out.Message)
	}
	created, _ := out.Results.(map[string]any)
	id, _ := created["id"].(string)

	resp, _ = do(t, app, http.MethodGet, "/api/blog/oud-in-summer", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected draft to be hidden, got %d", resp.StatusCode)
	}

	resp, out = do(t, app, http.MethodPut, "/api/admin/blog/"+id, `{"title":"Wearing Oud in Summer","slug":"oud-in-summer","content":"## Light touch","is_published":true}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, out.Message)
	}

	resp, out = do(t, app, http.MethodGet, "/api/blog", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	list, _ := out.Results.([]any)
	if len(list) != 1 {
		t.Fatalf("expected 1 published post, got %v", out.Results)
	}
	summary, _ := list[0].(map[string]any)
	if _, hasContent := summary["content"]; hasContent {
		t.Fatalf("listing should not include content")
	}
	if summary["published_at"] == nil {
		t.Fatalf("expected published_at to be set")
	}
}

func TestBlogHandler_Errors(t *testing.T) {
	app := newTestApp(t)

	resp, out := do(t, app, http.MethodPost, "/api/admin/blog", `{"title":"","slug":"x","content":"y"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", resp.StatusCode, out.Message)
	}

	body := `{"title":"Same","slug":"same","content":"y"}`
	if resp, _ := do(t, app, http.MethodPost, "/api/admin/blog", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if resp, _ := do(t, app, http.MethodPost, "/api/admin/blog", body); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
	if resp, _ := do(t, app, http.MethodDelete, "/api/admin/blog/missing", ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
