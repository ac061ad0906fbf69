package domain

import "context"

// Generator turns a text prompt into an image reference (hosted URL or data URI).
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateFunc is a single deferred generation for one product.
type GenerateFunc func(ctx context.Context) (string, error)

// GeneratorFunc adapts a plain function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
