package repository

import (
	"context"
	"time"

	"github.com/mervel/storefront/infrastructure/valkey"
)

// ValkeyContentCache shares generated pages between instances.
type ValkeyContentCache struct {
	client *valkey.Client
}

func NewValkeyContentCache(client *valkey.Client) *ValkeyContentCache {
	return &ValkeyContentCache{client: client}
}

func (c *ValkeyContentCache) Get(ctx context.Context, pageType string) (string, bool, error) {
	return c.client.GetString(ctx, c.client.Key("page", pageType))
}

func (c *ValkeyContentCache) Set(ctx context.Context, pageType, content string, ttl time.Duration) error {
	return c.client.SetString(ctx, c.client.Key("page", pageType), content, ttl)
}
