package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"easel-ticket/internal/clock"
	"easel-ticket/internal/status"
	"easel-ticket/internal/store"
	"easel-ticket/models"
	"easel-ticket/monitoring"
)

// Sources of a payment confirmation, used in logs and metrics.
const (
	SourceWebhook = "webhook"
	SourceManual  = "manual"
	SourceTest    = "test"
)

type FulfillmentService struct {
	store       *store.Store
	clock       clock.Clock
	mail        ConfirmationSender
	publisher   Publisher
	mailTimeout time.Duration

	wg sync.WaitGroup
}

// NewFulfillmentService wires the post-commit notifiers; either may be nil.
func NewFulfillmentService(s *store.Store, clk clock.Clock, mail ConfirmationSender, publisher Publisher, mailTimeout time.Duration) *FulfillmentService {
	if mailTimeout <= 0 {
		mailTimeout = 30 * time.Second
	}
	return &FulfillmentService{
		store:       s,
		clock:       clk,
		mail:        mail,
		publisher:   publisher,
		mailTimeout: mailTimeout,
	}
}

// Fulfill moves the order of sessionID from PENDING to PAID, consumes its
// exchange codes, issues its tickets and updates the performance counters in
// one transaction. Repeated confirmations for the same session are no-ops.
func (s *FulfillmentService) Fulfill(ctx context.Context, sessionID, paymentRef, source string) (*models.FulfillmentResult, error) {
	result := &models.FulfillmentResult{}

	err := s.store.RunInTransaction(func(tx *store.Store) error {
		order, err := tx.FindOrderBySessionID(sessionID)
		if errors.Is(err, status.ErrOrderNotFound) {
			result.NotFound = true
			return nil
		}
		if err != nil {
			return err
		}
		result.Order = order

		switch order.Status {
		case models.OrderStatusPaid:
			result.AlreadyPaid = true
			return nil
		case models.OrderStatusPending:
		default:
			result.Skipped = true
			return nil
		}

		now := s.clock.Now()
		if err := order.MarkAsPaid(paymentRef, now); err != nil {
			return err
		}
		if err := tx.SaveOrder(ctx, order); err != nil {
			return fmt.Errorf("save paid order: %w", err)
		}

		for _, code := range order.ExchangeCodes {
			if err := s.consumeCode(ctx, tx, code, order.ID, now); err != nil {
				return err
			}
		}

		tickets := models.BuildTickets(order)
		if err := tx.CreateTickets(ctx, tickets); err != nil {
			return err
		}
		result.Tickets = tickets

		if order.PerformanceID != "" {
			err := tx.AddSold(ctx, order.PerformanceID, order.GeneralQuantity, order.ReservedQuantity)
			if errors.Is(err, status.ErrPerformanceNotFound) {
				slog.Warn("paid order references missing performance", "orderID", order.ID, "performanceID", order.PerformanceID)
			} else if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		monitoring.TrackFulfillment(source, "error")
		return nil, fmt.Errorf("fulfill session %s: %w", sessionID, err)
	}

	switch {
	case result.NotFound:
		monitoring.TrackFulfillment(source, "not_found")
		slog.Warn("no order for session", "sessionID", sessionID, "source", source)
	case result.AlreadyPaid:
		monitoring.TrackFulfillment(source, "already_paid")
		slog.Info("order already paid", "orderID", result.Order.ID, "sessionID", sessionID, "source", source)
	case result.Skipped:
		monitoring.TrackFulfillment(source, "skipped")
		slog.Warn("payment confirmation for closed order", "orderID", result.Order.ID, "status", result.Order.Status, "source", source)
	default:
		monitoring.TrackFulfillment(source, "paid")
		monitoring.TrackTicketsIssued(string(models.TicketTypeGeneral), result.Order.GeneralQuantity)
		monitoring.TrackTicketsIssued(string(models.TicketTypeReserved), result.Order.ReservedQuantity)
		slog.Info("order paid", "orderID", result.Order.ID, "sessionID", sessionID, "tickets", len(result.Tickets), "source", source)
		s.notify(result.Order, result.Tickets)
	}

	return result, nil
}

func (s *FulfillmentService) consumeCode(ctx context.Context, tx *store.Store, code, orderID string, at time.Time) error {
	c, err := tx.FindExchangeCode(code)
	if errors.Is(err, status.ErrRefCodeNotFound) {
		slog.Warn("exchange code vanished before payment", "code", code, "orderID", orderID)
		return nil
	}
	if err != nil {
		return err
	}
	if !c.MarkAsUsed(orderID, at) {
		slog.Warn("exchange code already used", "code", code, "orderID", orderID, "usedBy", c.OrderID)
		return nil
	}
	return tx.SaveExchangeCode(ctx, c)
}

// notify runs the post-commit side effects in the background. Their
// failures never affect the paid order.
func (s *FulfillmentService) notify(order *models.Order, tickets []*models.Ticket) {
	if s.publisher != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			msg := map[string]any{
				"type":       "payment_success",
				"order_id":   order.ID,
				"session_id": order.StripeSessionID,
				"tickets":    len(tickets),
			}
			if err := s.publisher.Publish(OrderChannel(order.StripeSessionID), msg); err != nil {
				slog.Warn("publish payment success", "orderID", order.ID, "error", err)
			}
		}()
	}

	if s.mail != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.mailTimeout)
			defer cancel()
			if err := s.mail.SendConfirmation(ctx, order, tickets); err != nil {
				slog.Error("send confirmation email", "orderID", order.ID, "error", err)
			}
		}()
	}
}

// Expire cancels a still PENDING order whose payment session lapsed. It
// reports whether the order was cancelled.
func (s *FulfillmentService) Expire(ctx context.Context, sessionID string) (bool, error) {
	cancelled := false
	err := s.store.RunInTransaction(func(tx *store.Store) error {
		order, err := tx.FindOrderBySessionID(sessionID)
		if errors.Is(err, status.ErrOrderNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if order.Status != models.OrderStatusPending {
			return nil
		}
		if err := order.TransitionTo(models.OrderStatusCancelled, s.clock.Now()); err != nil {
			return err
		}
		cancelled = true
		return tx.SaveOrder(ctx, order)
	})
	if err != nil {
		return false, fmt.Errorf("expire session %s: %w", sessionID, err)
	}
	if cancelled {
		slog.Info("order cancelled after session expiry", "sessionID", sessionID)
	}
	return cancelled, nil
}

// Wait blocks until background notifications have finished.
func (s *FulfillmentService) Wait() {
	s.wg.Wait()
}
