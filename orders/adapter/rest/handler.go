package rest

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	cartDomain "github.com/mervel/storefront/cart/domain"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	"github.com/mervel/storefront/orders/application"
	"github.com/mervel/storefront/orders/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/mervel/storefront/pkg/utils"
)

// UserIDLocal is the fiber local the auth middleware stores the caller id under.
const UserIDLocal = "user_id"

type OrderHandler struct {
	checkout *application.CheckoutService
	orders   *application.OrderService
	tracking *application.TrackingService
}

func NewOrderHandler(checkout *application.CheckoutService, orders *application.OrderService, tracking *application.TrackingService) *OrderHandler {
	return &OrderHandler{checkout: checkout, orders: orders, tracking: tracking}
}

func (h *OrderHandler) RegisterRoutes(api fiber.Router, admin fiber.Router) {
	api.Post("/orders", h.PlaceOrder)
	api.Get("/orders/track", h.TrackOrder)

	admin.Get("/orders", h.ListOrders)
	admin.Get("/orders/:id", h.GetOrder)
	admin.Patch("/orders/:id/status", h.UpdateStatus)
	admin.Delete("/orders/:id", h.DeleteOrder)
}

func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	var form domain.CheckoutForm
	if err := c.BodyParser(&form); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}
	if form.SessionID == "" {
		form.SessionID = c.Get("X-Cart-Session")
	}

	var userID *string
	if id, ok := c.Locals(UserIDLocal).(string); ok && id != "" {
		userID = &id
	}

	receipt, err := h.checkout.PlaceOrder(c.UserContext(), &form, userID)
	utils.PanicIfNeeded(mapError(err))

	return c.Status(fiber.StatusCreated).JSON(utils.ResponseData{
		Status:  201,
		Code:    "SUCCESS",
		Message: "Order placed",
		Results: receipt,
	})
}

func (h *OrderHandler) TrackOrder(c *fiber.Ctx) error {
	result, err := h.tracking.Track(c.UserContext(), c.Query("q"))
	if errors.Is(err, domain.ErrOrderNotFound) {
		err = pkgError.NotFoundError("No order found with this ID or phone number")
	}
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Orders found",
		Results: result,
	})
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	filter := domain.OrderFilter{
		Status: domain.Status(c.Query("status")),
		Limit:  c.QueryInt("limit", 0),
		Offset: c.QueryInt("offset", 0),
	}
	orders, err := h.orders.List(c.UserContext(), filter)
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(fiber.Map{"data": orders, "count": len(orders)})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	order, err := h.orders.Get(c.UserContext(), c.Params("id"))
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Order retrieved",
		Results: order,
	})
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var req struct {
		Status domain.Status `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}
	order, err := h.orders.UpdateStatus(c.UserContext(), c.Params("id"), req.Status)
	utils.PanicIfNeeded(mapError(err))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Order status updated",
		Results: order,
	})
}

func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	utils.PanicIfNeeded(mapError(h.orders.Delete(c.UserContext(), c.Params("id"))))
	return c.SendStatus(fiber.StatusNoContent)
}

func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, catalogDomain.ErrProductNotFound),
		errors.Is(err, catalogDomain.ErrComboNotFound):
		return pkgError.NotFoundError(err.Error())
	case errors.Is(err, domain.ErrInvalidStatus),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, cartDomain.ErrVariantNotFound),
		errors.Is(err, cartDomain.ErrMissingSession):
		return pkgError.ValidationError(err.Error())
	}
	return err
}
