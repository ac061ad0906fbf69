package domain

import "context"

// Entry describes one cached image reference.
type Entry struct {
	Key  string `json:"key"`
	Size int    `json:"size"`
}

// ImageStore is the durable key/value cache of generated images. Entries never
// expire; invalidation happens by moving to a new key prefix.
type ImageStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, url string) error
	Delete(ctx context.Context, key string) error
	// Scan lists the entries whose key starts with prefix. An empty prefix lists everything.
	Scan(ctx context.Context, prefix string) ([]Entry, error)
	// Clear removes the entries whose key starts with prefix and reports how many were removed.
	Clear(ctx context.Context, prefix string) (int, error)
}
