package rest

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/pkg/utils"
	"github.com/mervel/storefront/sitemap/application"
)

type SitemapHandler struct {
	builder *application.Builder
}

func NewSitemapHandler(builder *application.Builder) *SitemapHandler {
	return &SitemapHandler{builder: builder}
}

func (h *SitemapHandler) RegisterRoutes(app fiber.Router) {
	app.Get("/sitemap.xml", h.Sitemap)
}

func (h *SitemapHandler) Sitemap(c *fiber.Ctx) error {
	body, err := h.builder.Render(c.UserContext())
	utils.PanicIfNeeded(err)

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationXMLCharsetUTF8)
	c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
	return c.Send(body)
}
