package validations

import (
	"strings"
	"unicode/utf8"

	pkgError "github.com/mervel/storefront/pkg/error"
)

const minTrackingQuery = 4

// ErrTrackingQuery is returned for missing or too-short tracking queries.
const ErrTrackingQuery = pkgError.ValidationError("Please provide a valid order ID or phone number (min 4 characters)")

// ValidateTrackingQuery trims the query and enforces the minimum length.
func ValidateTrackingQuery(query string) (string, error) {
	q := strings.TrimSpace(query)
	if utf8.RuneCountInString(q) < minTrackingQuery {
		return "", ErrTrackingQuery
	}
	return q, nil
}
