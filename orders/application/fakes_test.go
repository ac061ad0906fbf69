package application

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	catalogDomain "github.com/mervel/storefront/catalog/domain"
	"github.com/mervel/storefront/orders/domain"
)

type fakeRepo struct {
	mu     sync.Mutex
	orders map[string]*domain.Order
	calls  int32
}

func newFakeRepo(orders ...*domain.Order) *fakeRepo {
	r := &fakeRepo{orders: make(map[string]*domain.Order)}
	for _, o := range orders {
		r.orders[o.ID] = o
	}
	return r
}

func (r *fakeRepo) touch() { atomic.AddInt32(&r.calls, 1) }

func (r *fakeRepo) Calls() int { return int(atomic.LoadInt32(&r.calls)) }

func (r *fakeRepo) Create(_ context.Context, o *domain.Order) error {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	r.orders[o.ID] = o
	return nil
}

func (r *fakeRepo) UpdateStatus(_ context.Context, id string, status domain.Status) (*domain.Order, error) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	o.Status = status
	return o, nil
}

func (r *fakeRepo) Delete(_ context.Context, id string) error {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id string) (*domain.Order, error) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

func (r *fakeRepo) filter(limit int, match func(*domain.Order) bool) []*domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if match(o) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *fakeRepo) FindByPhone(_ context.Context, phone string, limit int) ([]*domain.Order, error) {
	r.touch()
	return r.filter(limit, func(o *domain.Order) bool { return o.CustomerPhone == phone }), nil
}

func (r *fakeRepo) FindByPhoneSuffix(_ context.Context, suffix string, limit int) ([]*domain.Order, error) {
	r.touch()
	return r.filter(limit, func(o *domain.Order) bool {
		return strings.HasSuffix(strings.ToLower(o.CustomerPhone), strings.ToLower(suffix))
	}), nil
}

func (r *fakeRepo) List(_ context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	r.touch()
	return r.filter(filter.Limit, func(o *domain.Order) bool {
		return filter.Status == "" || o.Status == filter.Status
	}), nil
}

func (r *fakeRepo) Count(_ context.Context, status domain.Status) (int64, error) {
	r.touch()
	return int64(len(r.filter(0, func(o *domain.Order) bool { return status == "" || o.Status == status }))), nil
}

type fakeImages map[string]string

func (f fakeImages) ListBySlugs(_ context.Context, slugs []string) ([]*catalogDomain.Product, error) {
	var out []*catalogDomain.Product
	for _, s := range slugs {
		if img, ok := f[s]; ok {
			out = append(out, &catalogDomain.Product{Slug: s, ImageURL: img})
		}
	}
	return out, nil
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *recordingSink) PublishOrderEvent(_ context.Context, evt domain.Event) error {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
	return nil
}

func (s *recordingSink) Types() []domain.EventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}
