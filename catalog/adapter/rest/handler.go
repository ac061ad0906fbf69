package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/catalog/application"
	"github.com/mervel/storefront/catalog/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/mervel/storefront/pkg/utils"
)

// ProductHandler serves the public catalog and the admin product endpoints.
type ProductHandler struct {
	products *application.ProductService
	uploads  *application.UploadService
}

func NewProductHandler(products *application.ProductService, uploads *application.UploadService) *ProductHandler {
	return &ProductHandler{products: products, uploads: uploads}
}

// RegisterRoutes mounts the public routes on api and the admin routes on admin.
func (h *ProductHandler) RegisterRoutes(api fiber.Router, admin fiber.Router) {
	api.Get("/products", h.ListProducts)
	api.Get("/products/:slug", h.GetProduct)
	api.Get("/collections", h.ListCollections)
	api.Get("/collections/:id", h.GetCollection)

	admin.Get("/products", h.AdminListProducts)
	admin.Post("/products", h.CreateProduct)
	admin.Put("/products/:id", h.UpdateProduct)
	admin.Delete("/products/:id", h.DeleteProduct)
	if h.uploads != nil {
		admin.Post("/uploads", h.UploadImage)
	}
}

func (h *ProductHandler) ListProducts(c *fiber.Ctx) error {
	products, err := h.products.ListActive(c.UserContext(), c.Query("category"))
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Products retrieved",
		Results: products,
	})
}

func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	product, err := h.products.GetPublished(c.UserContext(), c.Params("slug"))
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Product retrieved",
		Results: product,
	})
}

func (h *ProductHandler) ListCollections(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Collections retrieved",
		Results: h.products.Collections(),
	})
}

func (h *ProductHandler) GetCollection(c *fiber.Ctx) error {
	combo, products, err := h.products.Collection(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Collection retrieved",
		Results: CollectionResponse{Combo: combo, Products: products},
	})
}

func (h *ProductHandler) AdminListProducts(c *fiber.Ctx) error {
	filter := domain.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
		Limit:    c.QueryInt("limit", 0),
		Offset:   c.QueryInt("offset", 0),
	}
	products, err := h.products.List(c.UserContext(), filter)
	utils.PanicIfNeeded(err)

	return c.JSON(fiber.Map{"data": products, "count": len(products)})
}

func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}

	product := &domain.Product{}
	req.apply(product)
	utils.PanicIfNeeded(mapError(h.products.Create(c.UserContext(), product)))

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Product created",
		Results: product,
	})
}

func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	var req ProductRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}

	product, err := h.products.GetByID(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(mapError(err))

	req.apply(product)
	utils.PanicIfNeeded(mapError(h.products.Update(c.UserContext(), product)))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Product updated",
		Results: product,
	})
}

func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	utils.PanicIfNeeded(mapError(h.products.Delete(c.UserContext(), c.Params("id"))))
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *ProductHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("No file provided"))
	}
	uploaded, err := h.uploads.Save(fh)
	utils.PanicIfNeeded(mapError(err))

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Image uploaded",
		Results: uploaded,
	})
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrProductNotFound), errors.Is(err, domain.ErrComboNotFound):
		return pkgError.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrDuplicateSlug):
		return pkgError.ConflictError(err.Error())
	case errors.Is(err, domain.ErrInvalidUpload):
		return pkgError.ValidationError(err.Error())
	}
	return err
}
