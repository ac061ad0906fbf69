package repository

import (
	"context"
	"sync"
	"time"
)

type cached struct {
	content   string
	expiresAt time.Time
}

// MemoryContentCache keeps generated pages in process memory.
type MemoryContentCache struct {
	mu    sync.RWMutex
	pages map[string]cached
}

func NewMemoryContentCache() *MemoryContentCache {
	return &MemoryContentCache{pages: make(map[string]cached)}
}

func (c *MemoryContentCache) Get(_ context.Context, pageType string) (string, bool, error) {
	c.mu.RLock()
	entry, ok := c.pages[pageType]
	c.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.pages, pageType)
		c.mu.Unlock()
		return "", false, nil
	}
	return entry.content, true, nil
}

func (c *MemoryContentCache) Set(_ context.Context, pageType, content string, ttl time.Duration) error {
	entry := cached{content: content}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.pages[pageType] = entry
	c.mu.Unlock()
	return nil
}
