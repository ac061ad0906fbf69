package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mervel/storefront/cart/domain"
	"github.com/mervel/storefront/infrastructure/valkey"
)

const valkeyNamespace = "cart"

// ValkeyStore keeps carts as JSON documents with a sliding expiry.
type ValkeyStore struct {
	client *valkey.Client
	ttl    time.Duration
}

func NewValkeyStore(client *valkey.Client, ttl time.Duration) *ValkeyStore {
	return &ValkeyStore{client: client, ttl: ttl}
}

func (s *ValkeyStore) key(sessionID string) string {
	return s.client.Key(valkeyNamespace, sessionID)
}

func (s *ValkeyStore) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	raw, ok, err := s.client.GetString(ctx, s.key(sessionID))
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", sessionID, err)
	}
	if !ok {
		return domain.New(sessionID), nil
	}
	var c domain.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	return &c, nil
}

func (s *ValkeyStore) Save(ctx context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return s.client.SetString(ctx, s.key(cart.SessionID), string(payload), s.ttl)
}

func (s *ValkeyStore) Delete(ctx context.Context, sessionID string) error {
	return s.client.Delete(ctx, s.key(sessionID))
}
