package validations

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	pkgError "github.com/mervel/storefront/pkg/error"
)

// Page types the content generator accepts.
const (
	PageShippingPolicy = "shipping-policy"
	PageReturns        = "returns"
	PageContact        = "contact"
)

const (
	ErrPromptMissing   = pkgError.ValidationError("Missing or invalid 'prompt' field")
	ErrInvalidPageType = pkgError.ValidationError("Invalid page type. Use: shipping-policy, returns, or contact")
)

// ValidatePrompt only rejects an absent prompt; blank text is forwarded as is.
func ValidatePrompt(prompt string) error {
	if prompt == "" {
		return ErrPromptMissing
	}
	return nil
}

func ValidatePageType(pageType string) error {
	if err := validation.Validate(pageType, validation.Required, validation.In(PageShippingPolicy, PageReturns, PageContact)); err != nil {
		return ErrInvalidPageType
	}
	return nil
}
