package domain

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrDuplicateSlug   = errors.New("a product with this slug already exists")
	ErrComboNotFound   = errors.New("collection not found")
	ErrInvalidUpload   = errors.New("invalid image upload")
)
