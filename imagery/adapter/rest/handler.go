package rest

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	catalogApp "github.com/mervel/storefront/catalog/application"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	"github.com/mervel/storefront/imagery/application"
	"github.com/mervel/storefront/imagery/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/mervel/storefront/pkg/utils"
)

// Catalog is the slice of the product catalog the image endpoints need.
type Catalog interface {
	GetPublished(ctx context.Context, slug string) (*catalogDomain.Product, error)
	ListActive(ctx context.Context, category string) ([]catalogApp.ProductListing, error)
}

type ImageHandler struct {
	images  *application.ImageService
	catalog Catalog
}

func NewImageHandler(images *application.ImageService, catalog Catalog) *ImageHandler {
	return &ImageHandler{images: images, catalog: catalog}
}

func (h *ImageHandler) RegisterRoutes(api fiber.Router, admin fiber.Router) {
	api.Get("/products/:id/image", h.GetProductImage)
	api.Post("/images/preload", h.Preload)

	admin.Get("/images/stats", h.Stats)
	admin.Post("/images/clear", h.Clear)
	admin.Post("/images/bump", h.Bump)
	admin.Delete("/images/:id", h.Invalidate)
}

type imageResult struct {
	ProductID string `json:"product_id"`
	ImageURL  string `json:"image_url"`
	Source    string `json:"source"`
}

func (h *ImageHandler) GetProductImage(c *fiber.Ctx) error {
	id := c.Params("id")
	product, err := h.catalog.GetPublished(c.UserContext(), id)
	if errors.Is(err, catalogDomain.ErrProductNotFound) {
		utils.PanicIfNeeded(pkgError.NotFoundError("product not found"))
	}
	utils.PanicIfNeeded(err)

	if product.ImageURL != "" {
		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "Product image retrieved",
			Results: imageResult{ProductID: id, ImageURL: product.ImageURL, Source: "upload"},
		})
	}

	if url, ok := h.images.Cached(c.UserContext(), id); ok {
		return c.JSON(utils.ResponseData{
			Status:  200,
			Code:    "SUCCESS",
			Message: "Product image retrieved",
			Results: imageResult{ProductID: id, ImageURL: url, Source: "cache"},
		})
	}

	if !c.QueryBool("wait", true) {
		h.images.Preload(c.UserContext(), []application.PreloadItem{{ProductID: id, Category: product.Category}})
		return c.Status(fiber.StatusAccepted).JSON(utils.ResponseData{
			Status:  202,
			Code:    "PENDING",
			Message: "Image generation queued",
			Results: imageResult{ProductID: id, Source: "queued"},
		})
	}

	url, err := h.images.ProductImage(c.UserContext(), id, product.Category)
	utils.PanicIfNeeded(mapGenerationError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Product image generated",
		Results: imageResult{ProductID: id, ImageURL: url, Source: "generated"},
	})
}

func (h *ImageHandler) Preload(c *fiber.Ctx) error {
	var req struct {
		ProductIDs []string `json:"product_ids"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
		}
	}

	products, err := h.catalog.ListActive(c.UserContext(), "")
	utils.PanicIfNeeded(err)

	wanted := make(map[string]bool, len(req.ProductIDs))
	for _, id := range req.ProductIDs {
		wanted[id] = true
	}
	items := make([]application.PreloadItem, 0, len(products))
	for _, p := range products {
		if p.ImageURL != "" {
			continue
		}
		if len(wanted) > 0 && !wanted[p.Slug] {
			continue
		}
		items = append(items, application.PreloadItem{ProductID: p.Slug, Category: p.Category})
	}

	res := h.images.Preload(c.UserContext(), items)
	return c.Status(fiber.StatusAccepted).JSON(utils.ResponseData{
		Status:  202,
		Code:    "SUCCESS",
		Message: "Preload queued",
		Results: res,
	})
}

func (h *ImageHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.images.Stats(c.UserContext())
	utils.PanicIfNeeded(err)
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Image cache stats",
		Results: stats,
	})
}

func (h *ImageHandler) Clear(c *fiber.Ctx) error {
	n, err := h.images.Clear(c.UserContext(), c.QueryBool("all", false))
	utils.PanicIfNeeded(err)
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Image cache cleared",
		Results: fiber.Map{"removed": n},
	})
}

func (h *ImageHandler) Bump(c *fiber.Ctx) error {
	prefix, err := h.images.BumpVersion(c.UserContext())
	utils.PanicIfNeeded(err)
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Image cache version bumped",
		Results: fiber.Map{"prefix": prefix},
	})
}

func (h *ImageHandler) Invalidate(c *fiber.Ctx) error {
	utils.PanicIfNeeded(h.images.Invalidate(c.UserContext(), c.Params("id")))
	return c.SendStatus(fiber.StatusNoContent)
}

func mapGenerationError(err error) error {
	if err == nil {
		return nil
	}
	var genErr *domain.GenerationError
	if !errors.As(err, &genErr) {
		if errors.Is(err, domain.ErrCancelled) {
			return pkgError.InternalServerError("image request cancelled")
		}
		return err
	}

	msg := genErr.Err.Error()
	if genErr.Notice != nil {
		msg = genErr.Notice.Message
	}
	switch genErr.Kind {
	case domain.FailurePaymentRequired:
		return pkgError.PaymentRequiredError(msg)
	case domain.FailureRateLimited:
		return pkgError.RateLimitedError(msg)
	}
	return pkgError.InternalServerError(msg)
}
