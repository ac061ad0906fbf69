package validations

import (
	"context"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/mervel/storefront/catalog/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

func ValidateProduct(ctx context.Context, product *domain.Product) error {
	err := validation.ValidateStructWithContext(ctx, product,
		validation.Field(&product.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&product.Slug, validation.Required, validation.Length(1, 120), validation.Match(slugPattern).Error("must be lowercase words separated by dashes")),
		validation.Field(&product.Category, validation.In(domain.CategoryWoody, domain.CategorySpicy, domain.CategoryFloral, domain.CategoryMusk, "")),
		validation.Field(&product.Stock, validation.Min(0)),
		validation.Field(&product.Longevity, validation.NilOrNotEmpty, validation.Min(1), validation.Max(5)),
		validation.Field(&product.Sillage, validation.NilOrNotEmpty, validation.Min(1), validation.Max(5)),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	for i, v := range product.Variants {
		if err := validation.ValidateStructWithContext(ctx, &v,
			validation.Field(&v.Volume, validation.Required),
			validation.Field(&v.Price, validation.Required, validation.Min(int64(1))),
		); err != nil {
			return pkgError.ValidationError(fmt.Sprintf("variants[%d]: %s", i, err.Error()))
		}
	}
	return nil
}
