package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/analytics/application"
	"github.com/mervel/storefront/pkg/utils"
)

type AnalyticsHandler struct {
	analytics *application.AnalyticsService
}

func NewAnalyticsHandler(analytics *application.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) RegisterRoutes(admin fiber.Router) {
	admin.Get("/dashboard", h.Dashboard)
	admin.Get("/analytics", h.Catalog)
}

func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	dashboard, err := h.analytics.Dashboard(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Dashboard retrieved",
		Results: dashboard,
	})
}

func (h *AnalyticsHandler) Catalog(c *fiber.Ctx) error {
	report, err := h.analytics.Catalog(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Analytics retrieved",
		Results: report,
	})
}
