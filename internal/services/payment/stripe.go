package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	Currency      string
	Locale        string
	Timeout       time.Duration

	// BaseURL overrides the API endpoint, used against local test servers.
	BaseURL string
}

// Stripe implements Gateway on Stripe Checkout.
type Stripe struct {
	cfg StripeConfig
	api *client.API
}

func NewStripe(cfg StripeConfig) *Stripe {
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyJPY)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	backendCfg := &stripe.BackendConfig{
		HTTPClient:        &http.Client{Timeout: cfg.Timeout},
		MaxNetworkRetries: stripe.Int64(1),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelWarn},
	}
	if cfg.BaseURL != "" {
		backendCfg.URL = stripe.String(cfg.BaseURL)
	}

	api := client.New(cfg.APIKey, &stripe.Backends{
		API:     stripe.GetBackendWithConfig(stripe.APIBackend, backendCfg),
		Connect: stripe.GetBackend(stripe.ConnectBackend),
		Uploads: stripe.GetBackend(stripe.UploadsBackend),
	})

	return &Stripe{cfg: cfg, api: api}
}

func (s *Stripe) CreateCheckoutSession(ctx context.Context, req *SessionRequest) (*Session, error) {
	if s.cfg.APIKey == "" {
		return nil, errors.New("stripe api key not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	if s.cfg.Locale != "" {
		params.Locale = stripe.String(s.cfg.Locale)
	}

	for _, item := range req.LineItems {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(s.cfg.Currency),
				UnitAmount: stripe.Int64(item.UnitAmount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	keys := make([]string, 0, len(req.Metadata))
	for k := range req.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		params.AddMetadata(k, req.Metadata[k])
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return nil, fmt.Errorf("%w: %s", status.ErrFailedPayment, stripeErr.Msg)
		}
		return nil, fmt.Errorf("%w: %v", status.ErrFailedPayment, err)
	}

	return &Session{ID: sess.ID, URL: sess.URL}, nil
}

func (s *Stripe) ParseWebhook(payload []byte, signature string) (*models.PaymentNotification, error) {
	if s.cfg.WebhookSecret == "" || strings.TrimSpace(signature) == "" {
		return nil, status.ErrWebhookSecret
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", status.ErrInvalidSignature, err)
	}

	n := &models.PaymentNotification{
		EventID:   event.ID,
		EventType: string(event.Type),
		Timestamp: time.Unix(event.Created, 0).UTC(),
	}

	switch n.EventType {
	case EventCheckoutCompleted, EventCheckoutExpired:
		if event.Data == nil {
			return n, fmt.Errorf("%w: event %s has no data", status.ErrInvalidPayload, event.ID)
		}
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return n, fmt.Errorf("%w: decode checkout session: %v", status.ErrInvalidPayload, err)
		}
		if sess.ID == "" {
			return n, fmt.Errorf("%w: event %s has no session id", status.ErrInvalidPayload, event.ID)
		}
		n.SessionID = sess.ID
		if sess.PaymentIntent != nil {
			n.PaymentIntentID = sess.PaymentIntent.ID
		}
	case EventPaymentIntentFailed:
		if event.Data != nil {
			var pi stripe.PaymentIntent
			if err := json.Unmarshal(event.Data.Raw, &pi); err == nil {
				n.PaymentIntentID = pi.ID
			}
		}
	}

	return n, nil
}
