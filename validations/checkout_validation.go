package validations

import (
	"context"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mervel/storefront/orders/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
)

func ValidateCheckout(ctx context.Context, form *domain.CheckoutForm) error {
	form.FullName = strings.TrimSpace(form.FullName)
	form.Email = strings.TrimSpace(form.Email)
	form.Phone = strings.TrimSpace(form.Phone)
	form.Address = strings.TrimSpace(form.Address)
	form.City = strings.TrimSpace(form.City)
	form.PostalCode = strings.TrimSpace(form.PostalCode)
	form.Notes = strings.TrimSpace(form.Notes)

	err := validation.ValidateStructWithContext(ctx, form,
		validation.Field(&form.FullName, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&form.Email, validation.Required, validation.RuneLength(1, 255), is.EmailFormat),
		validation.Field(&form.Phone, validation.Required, validation.RuneLength(4, 20)),
		validation.Field(&form.Address, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&form.City, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&form.PostalCode, validation.Required, validation.RuneLength(1, 10)),
		validation.Field(&form.Notes, validation.RuneLength(0, 500)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	for i, line := range form.Items {
		if err := validation.ValidateStructWithContext(ctx, &line,
			validation.Field(&line.ProductID, validation.Required),
			validation.Field(&line.Quantity, validation.Required, validation.Min(1), validation.Max(99)),
		); err != nil {
			return pkgError.ValidationError(fmt.Sprintf("items[%d]: %s", i, err.Error()))
		}
	}
	return nil
}
