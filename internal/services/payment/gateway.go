// Package payment talks to the card payment provider: it opens hosted
// checkout sessions and authenticates the provider's webhook deliveries.
package payment

import (
	"context"

	"easel-ticket/models"
)

// Event types forwarded by the provider that the service reacts to.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventCheckoutExpired     = "checkout.session.expired"
	EventPaymentIntentFailed = "payment_intent.payment_failed"
)

// Metadata keys attached to every checkout session.
const (
	MetadataDate              = "date"
	MetadataCustomerName      = "customer_name"
	MetadataGeneralQuantity   = "general_quantity"
	MetadataReservedQuantity  = "reserved_quantity"
	MetadataDiscountedGeneral = "discounted_general_count"
)

// LineItem is one priced row on the hosted checkout page. UnitAmount is in
// the smallest currency unit, which for JPY is the yen itself.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

type SessionRequest struct {
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
	LineItems     []LineItem
	Metadata      map[string]string
}

type Session struct {
	ID  string
	URL string
}

// Gateway is the payment provider as seen by checkout and webhook handling.
type Gateway interface {
	// CreateCheckoutSession opens a hosted payment page for the items.
	CreateCheckoutSession(ctx context.Context, req *SessionRequest) (*Session, error)

	// ParseWebhook authenticates a webhook body against its signature header
	// and extracts the checkout session it refers to. An authentic event
	// whose session cannot be read fails with status.ErrInvalidPayload.
	ParseWebhook(payload []byte, signature string) (*models.PaymentNotification, error)
}
