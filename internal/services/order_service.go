package services

import (
	"context"

	"easel-ticket/internal/clock"
	"easel-ticket/internal/status"
	"easel-ticket/internal/store"
	"easel-ticket/models"
)

type OrderService struct {
	store *store.Store
	clock clock.Clock
}

func NewOrderService(s *store.Store, clk clock.Clock) *OrderService {
	return &OrderService{store: s, clock: clk}
}

func (s *OrderService) List(f store.OrderFilter) ([]*models.Order, error) {
	return s.store.ListOrders(f)
}

func (s *OrderService) Get(id string) (*models.Order, error) {
	return s.store.FindOrderByID(id)
}

func (s *OrderService) GetBySession(sessionID string) (*models.Order, error) {
	return s.store.FindOrderBySessionID(sessionID)
}

// UpdateStatus applies an admin status change. Only moves allowed by the
// order transition table are accepted.
func (s *OrderService) UpdateStatus(ctx context.Context, id, raw string) (*models.Order, error) {
	next, err := models.ParseOrderStatus(raw)
	if err != nil {
		return nil, status.Invalid(err.Error())
	}
	if next == models.OrderStatusPaid {
		return nil, status.Invalid("Orders become PAID through payment completion, which also issues tickets.")
	}

	var order *models.Order
	err = s.store.RunInTransaction(func(tx *store.Store) error {
		o, err := tx.FindOrderByID(id)
		if err != nil {
			return err
		}
		if err := o.TransitionTo(next, s.clock.Now()); err != nil {
			return err
		}
		order = o
		return tx.SaveOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *OrderService) Stats() (*models.OrderStats, error) {
	return s.store.OrderStats()
}
