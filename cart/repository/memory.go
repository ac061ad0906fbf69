package repository

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mervel/storefront/cart/domain"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryStore keeps carts in process memory for a sliding TTL.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{entries: make(map[string]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *MemoryStore) Get(_ context.Context, sessionID string) (*domain.Cart, error) {
	s.mu.Lock()
	entry, ok := s.entries[sessionID]
	if ok && s.expired(entry) {
		delete(s.entries, sessionID)
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return domain.New(sessionID), nil
	}
	var c domain.Cart
	if err := json.Unmarshal(entry.payload, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Save stores a snapshot, so later mutations of cart do not leak in.
func (s *MemoryStore) Save(_ context.Context, cart *domain.Cart) error {
	cart.UpdatedAt = s.now().UTC()
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	e := memoryEntry{payload: payload}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	s.entries[cart.SessionID] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt)
}

// sweep drops expired carts. Caller holds mu.
func (s *MemoryStore) sweep() {
	for id, e := range s.entries {
		if s.expired(e) {
			delete(s.entries, id)
		}
	}
}
