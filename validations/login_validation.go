package validations

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	pkgError "github.com/mervel/storefront/pkg/error"
)

const minPasswordLength = 6

// ValidateCredentials normalizes the email and checks both fields.
func ValidateCredentials(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	err := validation.Errors{
		"email":    validation.Validate(email, validation.Required, validation.Length(1, 255), is.EmailFormat),
		"password": validation.Validate(password, validation.Required, validation.RuneLength(minPasswordLength, 72)),
	}.Filter()
	if err != nil {
		return "", pkgError.ValidationError(err.Error())
	}
	return email, nil
}

func ValidateFullName(name string) error {
	if err := validation.Validate(strings.TrimSpace(name), validation.RuneLength(0, 100)); err != nil {
		return pkgError.ValidationError("full_name: " + err.Error())
	}
	return nil
}
