package models

import (
	"fmt"
	"strings"
	"time"

	"easel-ticket/internal/status"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusCancelled OrderStatus = "CANCELLED"
	OrderStatusRefunded  OrderStatus = "REFUNDED"
)

// orderTransitions lists the only status moves an order may make.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:    {OrderStatusRefunded},
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case OrderStatusPending, OrderStatusPaid, OrderStatusCancelled, OrderStatusRefunded:
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID                     string      `json:"id"`
	StripeSessionID        string      `json:"stripe_session_id"`
	StripePaymentIntentID  string      `json:"stripe_payment_intent_id,omitempty"`
	PerformanceID          string      `json:"performance_id,omitempty"`
	PerformanceDate        string      `json:"performance_date"`
	PerformanceLabel       string      `json:"performance_label,omitempty"`
	GeneralQuantity        int         `json:"general_quantity"`
	ReservedQuantity       int         `json:"reserved_quantity"`
	GeneralPrice           int         `json:"general_price"`
	ReservedPrice          int         `json:"reserved_price"`
	DiscountedGeneralCount int         `json:"discounted_general_count"`
	DiscountAmount         int         `json:"discount_amount"`
	ExchangeCodes          []string    `json:"exchange_codes"`
	TotalAmount            int         `json:"total_amount"`
	CustomerName           string      `json:"customer_name"`
	CustomerEmail          string      `json:"customer_email"`
	CustomerPhone          string      `json:"customer_phone,omitempty"`
	Status                 OrderStatus `json:"status"`
	CreatedAt              time.Time   `json:"created_at"`
	PaidAt                 *time.Time  `json:"paid_at,omitempty"`
	CancelledAt            *time.Time  `json:"cancelled_at,omitempty"`
	RefundedAt             *time.Time  `json:"refunded_at,omitempty"`
}

func (o *Order) TicketCount() int {
	return o.GeneralQuantity + o.ReservedQuantity
}

// TransitionTo moves the order to next and stamps the matching timestamp.
func (o *Order) TransitionTo(next OrderStatus, at time.Time) error {
	if !o.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: order %s cannot move from %s to %s", status.ErrInvalidTransition, o.ID, o.Status, next)
	}
	o.Status = next
	switch next {
	case OrderStatusPaid:
		o.PaidAt = &at
	case OrderStatusCancelled:
		o.CancelledAt = &at
	case OrderStatusRefunded:
		o.RefundedAt = &at
	}
	return nil
}

func (o *Order) MarkAsPaid(paymentIntentID string, at time.Time) error {
	if err := o.TransitionTo(OrderStatusPaid, at); err != nil {
		return err
	}
	o.StripePaymentIntentID = paymentIntentID
	return nil
}

// JoinCodes and SplitCodes convert between the stored comma separated form
// and a slice of codes.
func JoinCodes(codes []string) string {
	return strings.Join(codes, ",")
}

func SplitCodes(raw string) []string {
	codes := []string{}
	for _, c := range strings.Split(raw, ",") {
		if c = NormalizeCode(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

// OrderStats aggregates paid orders.
type OrderStats struct {
	TotalOrders            int `json:"total_orders"`
	TotalRevenue           int `json:"total_revenue"`
	TotalTickets           int `json:"total_tickets"`
	TotalGeneralTickets    int `json:"total_general_tickets"`
	TotalReservedTickets   int `json:"total_reserved_tickets"`
	TotalDiscountedTickets int `json:"total_discounted_tickets"`
}
