package domain

import (
	"context"
	"time"
)

// ContentCache remembers generated page copy per page type.
type ContentCache interface {
	Get(ctx context.Context, pageType string) (string, bool, error)
	Set(ctx context.Context, pageType, content string, ttl time.Duration) error
}

// ImageGenerator produces a product image URL or data URI for a prompt.
type ImageGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Configured() bool
}

// TextGenerator produces page copy for a prompt.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Configured() bool
}
