package domain

import (
	"context"
	"errors"
)

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrVariantNotFound = errors.New("product variant not found")
	ErrMissingSession  = errors.New("missing cart session")
)

// SessionStore keeps carts between requests. Get returns an empty cart for
// unknown sessions.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}
