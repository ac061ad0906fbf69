package infrastructure

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/accounts/application"
	"github.com/mervel/storefront/accounts/domain"
	"github.com/mervel/storefront/accounts/repository"
	"github.com/mervel/storefront/accounts/security"
	"github.com/mervel/storefront/pkg/utils"
	"github.com/mervel/storefront/ui/rest/middleware"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *application.AuthService) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := repository.NewUserGormRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}
	auth := application.NewAuthService(repo, security.NewTokens("test-secret", time.Hour))

	app := fiber.New()
	app.Use(middleware.Recovery())
	api := app.Group("/api")
	NewAuthHandler(auth).RegisterRoutes(api)
	admin := api.Group("/admin", RequireAuth(auth), RequireRole(domain.RoleAdmin))
	admin.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	api.Get("/whoami", OptionalAuth(auth), func(c *fiber.Ctx) error {
		id, _ := c.Locals(UserIDLocal).(string)
		return c.SendString(id)
	})
	return app, auth
}

func do(t *testing.T, app *fiber.App, method, path, body, token string) (*http.Response, utils.ResponseData) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
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

func tokenFrom(t *testing.T, out utils.ResponseData) string {
	t.Helper()
	session, _ := out.Results.(map[string]any)
	token, _ := session["token"].(string)
	if token == "" {
		t.Fatalf("expected token in %v", out.Results)
	}
	return token
}

func TestAuthHandler_RegisterLoginMe(t *testing.T) {
	app, _ := newTestApp(t)

	resp, out := do(t, app, http.MethodPost, "/api/auth/register", `{"email":" Nadia@Example.com ","password":"secret1","full_name":"Nadia"}`, "")
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", resp.StatusCode, out.Message)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/auth/register", `{"email":"nadia@example.com","password":"secret1"}`, "")
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate email, got %d", resp.StatusCode)
	}

	resp, _ = do(t, app, http.MethodPost, "/api/auth/login", `{"email":"nadia@example.com","password":"wrong-pass"}`, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp, out = do(t, app, http.MethodPost, "/api/auth/login", `{"email":"nadia@example.com","password":"secret1"}`, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", resp.StatusCode, out.Message)
	}
	token := tokenFrom(t, out)

	resp, out = do(t, app, http.MethodGet, "/api/auth/me", "", token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	user, _ := out.Results.(map[string]any)
	if user["email"] != "nadia@example.com" || user["role"] != "customer" {
		t.Fatalf("unexpected profile %v", out.Results)
	}
	if _, leaked := user["PasswordHash"]; leaked {
		t.Fatalf("password hash must not be serialized")
	}
}

func TestAuthHandler_AdminGuard(t *testing.T) {
	app, auth := newTestApp(t)
	ctx := context.Background()

	if resp, _ := do(t, app, http.MethodGet, "/api/admin/ping", "", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", resp.StatusCode)
	}

	customerToken, _, err := auth.Register(ctx, "buyer@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if resp, _ := do(t, app, http.MethodGet, "/api/admin/ping", "", customerToken); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", resp.StatusCode)
	}

	if _, err := auth.EnsureAdmin(ctx, "owner@example.com", "admin-pass"); err != nil {
		t.Fatalf("EnsureAdmin() error: %v", err)
	}
	adminToken, _, err := auth.Login(ctx, "owner@example.com", "admin-pass")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if resp, _ := do(t, app, http.MethodGet, "/api/admin/ping", "", adminToken); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", resp.StatusCode)
	}

	// Re-running the bootstrap rotates the password.
	if _, err := auth.EnsureAdmin(ctx, "owner@example.com", "rotated-pass"); err != nil {
		t.Fatalf("EnsureAdmin() second run error: %v", err)
	}
	if _, _, err := auth.Login(ctx, "owner@example.com", "admin-pass"); err == nil {
		t.Fatalf("expected old admin password to be rejected")
	}
}

func TestOptionalAuth_AnonymousPassesThrough(t *testing.T) {
	app, auth := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected anonymous request to pass, got %d", resp.StatusCode)
	}

	token, user, err := auth.Register(context.Background(), "who@example.com", "secret1", "")
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	req = httptest.NewRequest(http.MethodGet, "/api/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	buf := new(strings.Builder)
	_, _ = io.Copy(buf, resp.Body)
	if buf.String() != user.ID {
		t.Fatalf("expected user id %s, got %q", user.ID, buf.String())
	}
}
