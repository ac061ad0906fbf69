package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/core/config"
	"github.com/mervel/storefront/functions/application"
	"github.com/mervel/storefront/functions/repository"
	"github.com/mervel/storefront/integrations/aigateway"
	ordersApp "github.com/mervel/storefront/orders/application"
	ordersDomain "github.com/mervel/storefront/orders/domain"
	ordersRepo "github.com/mervel/storefront/orders/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const imageCompletion = `{"id":"c1","object":"chat.completion","created":1700000000,"model":"m",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"",
"images":[{"type":"image_url","image_url":{"url":"data:image/png;base64,iVBORw0KGgo="}}]}}]}`

const textCompletion = `{"id":"c2","object":"chat.completion","created":1700000000,"model":"m",
"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"## Returns"}}]}`

const upstreamError = `{"error":{"message":"boom","type":"server_error"}}`

// gateway answers with the scripted statuses in order, then keeps the last one.
func gateway(t *testing.T, statuses ...int) (string, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1)) - 1
		status := statuses[len(statuses)-1]
		if n < len(statuses) {
			status = statuses[n]
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch {
		case status != http.StatusOK:
			_, _ = w.Write([]byte(upstreamError))
		case body["modalities"] != nil:
			_, _ = w.Write([]byte(imageCompletion))
		default:
			_, _ = w.Write([]byte(textCompletion))
		}
	}))
	t.Cleanup(srv.Close)
	return srv.URL + "/v1/", &calls
}

func newTestApp(t *testing.T, gatewayURL, key string) *fiber.App {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open in-memory sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	repo := ordersRepo.NewOrderGormRepository(db)
	if err := repo.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error: %v", err)
	}
	err = repo.Create(context.Background(), &ordersDomain.Order{
		ID: "3f2b8c1e-9a4d-4e6f-8b7a-1c2d3e4f5a6b", CustomerName: "Nadia Rahman", CustomerEmail: "n@example.com",
		CustomerPhone: "01712345678", ShippingAddress: "Dhaka", Subtotal: 4200, Total: 4320,
		Items: []ordersDomain.Item{{ProductID: "velvet-rose", Name: "Velvet Rose", Volume: "50ml", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	ai := aigateway.NewClient(config.AIConfig{
		GatewayURL: gatewayURL,
		GatewayKey: key,
		ImageModel: "google/gemini-2.5-flash-image",
		TextModel:  "google/gemini-2.5-flash-lite",
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	proxy := application.NewProxyService(ai, ai, repository.NewMemoryContentCache(), time.Hour)

	app := fiber.New()
	NewFunctionsHandler(proxy, ordersApp.NewTrackingService(repo, nil)).RegisterRoutes(app.Group("/functions"))
	return app
}

func post(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("app.Test() error: %v", err)
	}
	defer resp.Body.Close()
	out := map[string]any{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func TestGenerateImage_RecoversOnThirdAttempt(t *testing.T) {
	url, calls := gateway(t, 500, 500, 200)
	app := newTestApp(t, url, "k")

	status, body := post(t, app, "/functions/generate-image", `{"prompt":"amber bottle"}`)
	if status != http.StatusOK || body["imageUrl"] != "data:image/png;base64,iVBORw0KGgo=" {
		t.Fatalf("unexpected response %d %v", status, body)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestGenerateImage_Errors(t *testing.T) {
	url, calls := gateway(t, 402)
	app := newTestApp(t, url, "k")

	status, body := post(t, app, "/functions/generate-image", `{"prompt":"amber bottle"}`)
	if status != http.StatusPaymentRequired || body["error"] != "Payment required" {
		t.Fatalf("unexpected response %d %v", status, body)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected no retry on 402, got %d calls", calls.Load())
	}

	status, body = post(t, app, "/functions/generate-image", `{"prompt":42}`)
	if status != http.StatusBadRequest || body["error"] != "Missing or invalid 'prompt' field" {
		t.Fatalf("unexpected response %d %v", status, body)
	}

	noKey := newTestApp(t, url, "")
	status, body = post(t, noKey, "/functions/generate-image", `{"prompt":"amber bottle"}`)
	if status != http.StatusInternalServerError || body["error"] != "Server configuration error" {
		t.Fatalf("unexpected response %d %v", status, body)
	}
}

func TestGeneratePageContent(t *testing.T) {
	url, _ := gateway(t, 200)
	app := newTestApp(t, url, "k")

	status, body := post(t, app, "/functions/generate-page-content", `{"pageType":"returns"}`)
	if status != http.StatusOK || body["content"] != "## Returns" {
		t.Fatalf("unexpected response %d %v", status, body)
	}

	status, body = post(t, app, "/functions/generate-page-content", `{"pageType":"faq"}`)
	if status != http.StatusBadRequest || body["error"] != "Invalid page type. Use: shipping-policy, returns, or contact" {
		t.Fatalf("unexpected response %d %v", status, body)
	}

	limited, _ := gateway(t, 429)
	app = newTestApp(t, limited, "k")
	status, body = post(t, app, "/functions/generate-page-content", `{"pageType":"contact"}`)
	if status != http.StatusTooManyRequests || body["error"] != "Rate limit exceeded. Please try again shortly." {
		t.Fatalf("unexpected response %d %v", status, body)
	}
}

func TestTrackOrder(t *testing.T) {
	url, _ := gateway(t, 200)
	app := newTestApp(t, url, "k")

	status, body := post(t, app, "/functions/track-order", `{"query":"01712345678"}`)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, body)
	}
	orders := body["orders"].([]any)
	first := orders[0].(map[string]any)
	if first["customer_name"] != "N***n" || first["short_id"] != "3F2B8C1E" {
		t.Fatalf("unexpected order %v", first)
	}
	if body["order"].(map[string]any)["id"] != first["id"] {
		t.Fatalf("expected order to mirror orders[0]")
	}

	status, body = post(t, app, "/functions/track-order", `{"query":"12"}`)
	if status != http.StatusBadRequest || body["error"] != "Please provide a valid order ID or phone number (min 4 characters)" {
		t.Fatalf("unexpected response %d %v", status, body)
	}
	status, body = post(t, app, "/functions/track-order", `{"query":"00000000"}`)
	if status != http.StatusNotFound || body["error"] != "No order found with this ID or phone number" {
		t.Fatalf("unexpected response %d %v", status, body)
	}
}
