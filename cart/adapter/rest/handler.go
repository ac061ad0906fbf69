package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/mervel/storefront/cart/application"
	"github.com/mervel/storefront/cart/domain"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/mervel/storefront/pkg/utils"
)

// SessionHeader carries the cart session id in both directions.
const SessionHeader = "X-Cart-Session"

type CartHandler struct {
	carts *application.CartService
}

func NewCartHandler(carts *application.CartService) *CartHandler {
	return &CartHandler{carts: carts}
}

func (h *CartHandler) RegisterRoutes(api fiber.Router) {
	api.Get("/cart", h.GetCart)
	api.Post("/cart/items", h.AddItem)
	api.Patch("/cart/items", h.UpdateItem)
	api.Delete("/cart/items", h.RemoveItem)
	api.Post("/cart/combos/:id", h.AddCombo)
	api.Delete("/cart", h.ClearCart)
	api.Post("/cart/quote", h.QuoteLines)
}

type itemRequest struct {
	ProductID string `json:"product_id"`
	Volume    string `json:"volume"`
	Key       string `json:"key"`
	Quantity  int    `json:"quantity"`
}

func (r itemRequest) key() string {
	if r.Key != "" {
		return r.Key
	}
	return domain.Key(r.ProductID, r.Volume)
}

type quoteRequest struct {
	Items   []application.LineInput `json:"items"`
	ComboID string                  `json:"combo_id"`
}

// session returns the caller's cart session, minting one when absent.
func session(c *fiber.Ctx) string {
	id := c.Get(SessionHeader)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(SessionHeader, id)
	return id
}

func respond(c *fiber.Ctx, message string, quote domain.Quote) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: message,
		Results: quote,
	})
}

func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	quote, err := h.carts.Get(c.UserContext(), session(c))
	utils.PanicIfNeeded(mapError(err))
	return respond(c, "Cart retrieved", quote)
}

func (h *CartHandler) AddItem(c *fiber.Ctx) error {
	var req itemRequest
	if err := c.BodyParser(&req); err != nil || req.ProductID == "" {
		utils.PanicIfNeeded(pkgError.ValidationError("product_id is required"))
	}
	quote, err := h.carts.AddItem(c.UserContext(), session(c), req.ProductID, req.Volume)
	utils.PanicIfNeeded(mapError(err))
	return respond(c, "Item added", quote)
}

func (h *CartHandler) UpdateItem(c *fiber.Ctx) error {
	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}
	quote, err := h.carts.UpdateQuantity(c.UserContext(), session(c), req.key(), req.Quantity)
	utils.PanicIfNeeded(mapError(err))
	return respond(c, "Quantity updated", quote)
}

func (h *CartHandler) RemoveItem(c *fiber.Ctx) error {
	var req itemRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}
	quote, err := h.carts.RemoveItem(c.UserContext(), session(c), req.key())
	utils.PanicIfNeeded(mapError(err))
	return respond(c, "Item removed", quote)
}

func (h *CartHandler) AddCombo(c *fiber.Ctx) error {
	quote, err := h.carts.AddCombo(c.UserContext(), session(c), c.Params("id"))
	utils.PanicIfNeeded(mapError(err))
	return respond(c, "Combo added", quote)
}

func (h *CartHandler) ClearCart(c *fiber.Ctx) error {
	utils.PanicIfNeeded(mapError(h.carts.Clear(c.UserContext(), session(c))))
	return c.SendStatus(fiber.StatusNoContent)
}

// QuoteLines prices an arbitrary set of lines without touching the session.
func (h *CartHandler) QuoteLines(c *fiber.Ctx) error {
	var req quoteRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}
	cart, err := h.carts.Build(c.UserContext(), req.Items, req.ComboID)
	utils.PanicIfNeeded(mapError(err))
	quote, err := h.carts.Quote(c.UserContext(), cart)
	utils.PanicIfNeeded(err)
	return respond(c, "Quote calculated", quote)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrLineNotFound),
		errors.Is(err, catalogDomain.ErrProductNotFound),
		errors.Is(err, catalogDomain.ErrComboNotFound):
		return pkgError.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrVariantNotFound), errors.Is(err, domain.ErrMissingSession):
		return pkgError.ValidationError(err.Error())
	}
	return err
}
