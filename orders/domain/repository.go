package domain

import "context"

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
	Delete(ctx context.Context, id string) error

	FindByID(ctx context.Context, id string) (*Order, error)
	// FindByPhone returns exact phone matches, newest first.
	FindByPhone(ctx context.Context, phone string, limit int) ([]*Order, error)
	// FindByPhoneSuffix returns orders whose phone ends with suffix (case-insensitive), newest first.
	FindByPhoneSuffix(ctx context.Context, suffix string, limit int) ([]*Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*Order, error)
	Count(ctx context.Context, status Status) (int64, error)
}
