package domain

import "context"

// Setting represents a dynamic configuration value stored in the database.
type Setting struct {
	Key   string
	Value string
}

// ISettingsRepository defines the contract for persisting dynamic settings.
type ISettingsRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	All(ctx context.Context) ([]Setting, error)

	InitSchema(ctx context.Context) error
}

// Keys that override the static storefront configuration at runtime.
const (
	KeyShippingFee           = "store_shipping_fee"
	KeyFreeShippingThreshold = "store_free_shipping_threshold"
	KeyComboDiscount         = "store_combo_discount"
	KeyImageCachePrefix      = "imagery_cache_prefix"
)

// StoreSettings is the effective pricing and caching configuration.
type StoreSettings struct {
	ShippingFee           int64   `json:"shipping_fee"`
	FreeShippingThreshold int64   `json:"free_shipping_threshold"`
	ComboDiscount         float64 `json:"combo_discount"`
	ImageCachePrefix      string  `json:"image_cache_prefix"`
}
