package rest

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/functions/application"
	ordersApp "github.com/mervel/storefront/orders/application"
	ordersDomain "github.com/mervel/storefront/orders/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/sirupsen/logrus"
)

// FunctionsHandler serves the storefront's serverless-style endpoints. They
// keep a flat {error: "..."} body instead of the API envelope.
type FunctionsHandler struct {
	proxy    *application.ProxyService
	tracking *ordersApp.TrackingService
}

func NewFunctionsHandler(proxy *application.ProxyService, tracking *ordersApp.TrackingService) *FunctionsHandler {
	return &FunctionsHandler{proxy: proxy, tracking: tracking}
}

func (h *FunctionsHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/generate-image", h.GenerateImage)
	r.Post("/generate-page-content", h.GeneratePageContent)
	r.Post("/track-order", h.TrackOrder)
}

type statusCoder interface {
	StatusCode() int
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// failWith renders err with its own status, or 500 and fallback.
func failWith(c *fiber.Ctx, err error, fallback string) error {
	var sc statusCoder
	if errors.As(err, &sc) && sc.StatusCode() >= 400 {
		return fail(c, sc.StatusCode(), err.Error())
	}
	if fallback == "" {
		fallback = err.Error()
	}
	return fail(c, http.StatusInternalServerError, fallback)
}

func (h *FunctionsHandler) GenerateImage(c *fiber.Ctx) error {
	var req struct {
		Prompt any `json:"prompt"`
	}
	_ = c.BodyParser(&req)
	prompt, _ := req.Prompt.(string)

	url, err := h.proxy.GenerateImage(c.UserContext(), prompt)
	if err != nil {
		logrus.WithError(err).Warn("[FUNCTIONS] generate-image failed")
		return failWith(c, err, "")
	}
	return c.JSON(fiber.Map{"imageUrl": url})
}

func (h *FunctionsHandler) GeneratePageContent(c *fiber.Ctx) error {
	var req struct {
		PageType string `json:"pageType"`
	}
	_ = c.BodyParser(&req)

	content, err := h.proxy.GeneratePage(c.UserContext(), req.PageType)
	if err != nil {
		return failWith(c, err, "")
	}
	return c.JSON(fiber.Map{"content": content})
}

func (h *FunctionsHandler) TrackOrder(c *fiber.Ctx) error {
	var req struct {
		Query any `json:"query"`
	}
	_ = c.BodyParser(&req)
	query, _ := req.Query.(string)

	result, err := h.tracking.Track(c.UserContext(), query)
	switch {
	case err == nil:
		return c.JSON(result)
	case errors.Is(err, ordersDomain.ErrOrderNotFound):
		return fail(c, http.StatusNotFound, "No order found with this ID or phone number")
	}

	var verr pkgError.ValidationError
	if errors.As(err, &verr) {
		return fail(c, http.StatusBadRequest, verr.Error())
	}
	logrus.WithError(err).Error("[FUNCTIONS] track-order failed")
	return fail(c, http.StatusInternalServerError, "Internal server error")
}
