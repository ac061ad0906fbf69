package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/mervel/storefront/imagery/domain"
	"github.com/mervel/storefront/infrastructure/valkey"
)

const valkeyNamespace = "img"

// ValkeyStore keeps image references in Valkey without expiry so several
// storefront instances share one cache.
type ValkeyStore struct {
	client *valkey.Client
}

func NewValkeyStore(client *valkey.Client) *ValkeyStore {
	return &ValkeyStore{client: client}
}

func (s *ValkeyStore) key(k string) string {
	return s.client.Key(valkeyNamespace, k)
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (string, bool, error) {
	return s.client.GetString(ctx, s.key(key))
}

func (s *ValkeyStore) Set(ctx context.Context, key, url string) error {
	return s.client.SetString(ctx, s.key(key), url, 0)
}

func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	return s.client.Delete(ctx, s.key(key))
}

func (s *ValkeyStore) Scan(ctx context.Context, prefix string) ([]domain.Entry, error) {
	keys, err := s.client.ScanKeys(ctx, s.key(prefix)+"*")
	if err != nil {
		return nil, fmt.Errorf("scan image keys: %w", err)
	}
	base := s.key("")
	out := make([]domain.Entry, 0, len(keys))
	for _, k := range keys {
		val, ok, err := s.client.GetString(ctx, k)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, domain.Entry{Key: strings.TrimPrefix(k, base), Size: len(val)})
	}
	return out, nil
}

func (s *ValkeyStore) Clear(ctx context.Context, prefix string) (int, error) {
	keys, err := s.client.ScanKeys(ctx, s.key(prefix)+"*")
	if err != nil {
		return 0, fmt.Errorf("scan image keys: %w", err)
	}
	if err := s.client.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	return len(keys), nil
}
