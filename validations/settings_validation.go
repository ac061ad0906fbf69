package validations

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	pkgError "github.com/mervel/storefront/pkg/error"
)

// ValidateStoreOverrides checks the optional pricing overrides an admin submits.
func ValidateStoreOverrides(shippingFee, freeShippingThreshold *int64, comboDiscount *float64) error {
	err := validation.Errors{
		"shipping_fee":            validation.Validate(shippingFee, validation.Min(int64(0))),
		"free_shipping_threshold": validation.Validate(freeShippingThreshold, validation.Min(int64(0))),
		"combo_discount":          validation.Validate(comboDiscount, validation.Min(0.0), validation.Max(0.99)),
	}.Filter()
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
