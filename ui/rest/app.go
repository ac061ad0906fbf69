package rest

import (
	"runtime"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/core/config"
	"github.com/mervel/storefront/core/settings/application"
	pkgError "github.com/mervel/storefront/pkg/error"
	"github.com/mervel/storefront/pkg/utils"
	"github.com/mervel/storefront/validations"
)

type App struct {
	Settings *application.SettingsService
}

// InitRestApp mounts the version endpoint on api and the settings endpoints on admin.
func InitRestApp(api fiber.Router, admin fiber.Router, settings *application.SettingsService) App {
	rest := App{Settings: settings}
	api.Get("/app/version", rest.GetVersion)
	api.Get("/app/store", rest.GetStoreSettings)

	admin.Get("/settings", rest.GetSettings)
	admin.Put("/settings", rest.UpdateSettings)

	return rest
}

func (handler *App) GetVersion(c *fiber.Ctx) error {
	version := ""
	if config.Global != nil {
		version = config.Global.App.Version
	}
	return c.JSON(fiber.Map{
		"version": version,
		"os":      runtime.GOOS,
	})
}

// GetStoreSettings exposes the pricing the storefront needs to render carts.
func (handler *App) GetStoreSettings(c *fiber.Ctx) error {
	store, err := handler.Settings.GetStoreSettings(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Store settings retrieved",
		Results: store,
	})
}

func (handler *App) GetSettings(c *fiber.Ctx) error {
	store, err := handler.Settings.GetStoreSettings(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings retrieved",
		Results: fiber.Map{
			"store":  store,
			"config": config.GetAllSettings(),
		},
	})
}

type UpdateSettingsRequest struct {
	ShippingFee           *int64   `json:"shipping_fee"`
	FreeShippingThreshold *int64   `json:"free_shipping_threshold"`
	ComboDiscount         *float64 `json:"combo_discount"`
}

func (handler *App) UpdateSettings(c *fiber.Ctx) error {
	var req UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body"))
	}

	utils.PanicIfNeeded(validations.ValidateStoreOverrides(req.ShippingFee, req.FreeShippingThreshold, req.ComboDiscount))

	ctx := c.UserContext()
	if req.ShippingFee != nil {
		utils.PanicIfNeeded(handler.Settings.SetShippingFee(ctx, *req.ShippingFee))
	}
	if req.FreeShippingThreshold != nil {
		utils.PanicIfNeeded(handler.Settings.SetFreeShippingThreshold(ctx, *req.FreeShippingThreshold))
	}
	if req.ComboDiscount != nil {
		utils.PanicIfNeeded(handler.Settings.SetComboDiscount(ctx, *req.ComboDiscount))
	}

	store, err := handler.Settings.GetStoreSettings(ctx)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings updated",
		Results: store,
	})
}
