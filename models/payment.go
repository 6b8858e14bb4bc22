package models

import (
	"time"
)

// CheckoutRequest is the purchase form posted by the ticket page.
type CheckoutRequest struct {
	PerformanceID          string   `json:"performance_id"`
	Date                   string   `json:"date"`
	DateLabel              string   `json:"date_label"`
	GeneralQuantity        int      `json:"general_quantity"`
	ReservedQuantity       int      `json:"reserved_quantity"`
	DiscountedGeneralCount int      `json:"discounted_general_count"`
	ExchangeCodes          []string `json:"exchange_codes"`
	Name                   string   `json:"name"`
	Email                  string   `json:"email"`
	Phone                  string   `json:"phone"`
}

type CheckoutResponse struct {
	CheckoutURL string `json:"checkout_url"`
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
}

// PaymentNotification is the provider-neutral payment confirmation fed into
// order fulfillment.
type PaymentNotification struct {
	EventID         string    `json:"event_id"`
	EventType       string    `json:"event_type"`
	SessionID       string    `json:"session_id"`
	PaymentIntentID string    `json:"payment_intent_id"`
	Timestamp       time.Time `json:"timestamp"`
}

// FulfillmentResult describes what a payment confirmation did.
type FulfillmentResult struct {
	Order       *Order    `json:"order,omitempty"`
	Tickets     []*Ticket `json:"tickets,omitempty"`
	AlreadyPaid bool      `json:"already_paid"`
	NotFound    bool      `json:"not_found"`
	Skipped     bool      `json:"skipped"`
}
