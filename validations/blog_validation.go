package validations

import (
	"context"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/mervel/storefront/blog/domain"
	pkgError "github.com/mervel/storefront/pkg/error"
)

func ValidatePost(ctx context.Context, post *domain.Post) error {
	err := validation.ValidateStructWithContext(ctx, post,
		validation.Field(&post.Title, validation.Required, validation.RuneLength(1, 200)),
		validation.Field(&post.Slug, validation.Required, validation.Length(1, 200), validation.Match(slugPattern).Error("must be lowercase words separated by dashes")),
		validation.Field(&post.Content, validation.Required),
		validation.Field(&post.Author, validation.Required, validation.RuneLength(1, 100)),
		validation.Field(&post.Excerpt, validation.NilOrNotEmpty, validation.RuneLength(1, 500)),
		validation.Field(&post.MetaTitle, validation.NilOrNotEmpty, validation.RuneLength(1, 70)),
		validation.Field(&post.MetaDescription, validation.NilOrNotEmpty, validation.RuneLength(1, 160)),
		validation.Field(&post.CoverImage, validation.NilOrNotEmpty, is.RequestURI),
	)
	if err != nil {
		return pkgError.ValidationError(err.Error())
	}
	return nil
}
