package application

import (
	"context"
	"fmt"

	"github.com/mervel/storefront/orders/domain"
	"github.com/sirupsen/logrus"
)

const RecentOrdersLimit = 10

// OrderService backs the admin order screens. Every change is broadcast.
type OrderService struct {
	repo   domain.OrderRepository
	events *Broadcaster
}

func NewOrderService(repo domain.OrderRepository, events *Broadcaster) *OrderService {
	return &OrderService{repo: repo, events: events}
}

func (s *OrderService) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.repo.List(ctx, filter)
}

// Recent returns the latest orders for the dashboard.
func (s *OrderService) Recent(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx, domain.OrderFilter{Limit: RecentOrdersLimit})
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *OrderService) Count(ctx context.Context, status domain.Status) (int64, error) {
	return s.repo.Count(ctx, status)
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Order, error) {
	if !status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	order, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}
	logrus.Infof("[ORDERS] Order %s moved to %s", id, status)
	s.events.Publish(domain.Event{Type: domain.EventUpdate, Order: order})
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, id string) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete order %s: %w", id, err)
	}
	logrus.Infof("[ORDERS] Order %s deleted", id)
	s.events.Publish(domain.Event{Type: domain.EventDelete, Order: order})
	return nil
}
