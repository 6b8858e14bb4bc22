package services

import (
	"context"
	"errors"
	"log/slog"

	"easel-ticket/internal/services/payment"
	"easel-ticket/internal/status"
	"easel-ticket/models"
	"easel-ticket/monitoring"
)

// WebhookService authenticates provider deliveries and routes them to
// fulfillment.
type WebhookService struct {
	gateway     payment.Gateway
	fulfillment *FulfillmentService
	ledger      *EventLedger
}

func NewWebhookService(gateway payment.Gateway, fulfillment *FulfillmentService, ledger *EventLedger) *WebhookService {
	return &WebhookService{gateway: gateway, fulfillment: fulfillment, ledger: ledger}
}

// Handle verifies and processes one delivery. Signature problems are
// returned before anything is processed; a processing error releases the
// event so the provider retries it. Authentic but malformed deliveries are
// acknowledged, since a retry would carry the same body.
func (s *WebhookService) Handle(ctx context.Context, payload []byte, signature string) error {
	n, err := s.gateway.ParseWebhook(payload, signature)
	if errors.Is(err, status.ErrInvalidPayload) {
		eventType := "unknown"
		if n != nil {
			eventType = n.EventType
		}
		monitoring.TrackWebhookEvent(eventType, "malformed")
		slog.Warn("webhook payload malformed, acknowledging", "type", eventType, "error", err)
		return nil
	}
	if err != nil {
		monitoring.TrackWebhookEvent("unknown", "rejected")
		slog.Warn("webhook rejected", "error", err)
		return err
	}

	if !s.ledger.Begin(ctx, n.EventID) {
		monitoring.TrackWebhookEvent(n.EventType, "duplicate")
		slog.Info("webhook event already handled", "eventID", n.EventID, "type", n.EventType)
		return nil
	}

	if err := s.dispatch(ctx, n); err != nil {
		s.ledger.Release(ctx, n.EventID)
		monitoring.TrackWebhookEvent(n.EventType, "failed")
		return err
	}

	s.ledger.Complete(ctx, n.EventID)
	monitoring.TrackWebhookEvent(n.EventType, "processed")
	return nil
}

func (s *WebhookService) dispatch(ctx context.Context, n *models.PaymentNotification) error {
	switch n.EventType {
	case payment.EventCheckoutCompleted:
		_, err := s.fulfillment.Fulfill(ctx, n.SessionID, n.PaymentIntentID, SourceWebhook)
		return err
	case payment.EventCheckoutExpired:
		_, err := s.fulfillment.Expire(ctx, n.SessionID)
		return err
	case payment.EventPaymentIntentFailed:
		slog.Warn("payment failed", "eventID", n.EventID, "paymentIntentID", n.PaymentIntentID)
	default:
		slog.Info("unhandled webhook event", "eventID", n.EventID, "type", n.EventType)
	}
	return nil
}
