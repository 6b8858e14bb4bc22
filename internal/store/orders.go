package store

import (
	"context"
	"fmt"

	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func orderFromRecord(r *core.Record) *models.Order {
	return &models.Order{
		ID:                     r.Id,
		StripeSessionID:        r.GetString("stripe_session_id"),
		StripePaymentIntentID:  r.GetString("stripe_payment_intent_id"),
		PerformanceID:          r.GetString("performance_id"),
		PerformanceDate:        r.GetString("performance_date"),
		PerformanceLabel:       r.GetString("performance_label"),
		GeneralQuantity:        r.GetInt("general_quantity"),
		ReservedQuantity:       r.GetInt("reserved_quantity"),
		GeneralPrice:           r.GetInt("general_price"),
		ReservedPrice:          r.GetInt("reserved_price"),
		DiscountedGeneralCount: r.GetInt("discounted_general_count"),
		DiscountAmount:         r.GetInt("discount_amount"),
		ExchangeCodes:          models.SplitCodes(r.GetString("exchange_codes")),
		TotalAmount:            r.GetInt("total_amount"),
		CustomerName:           r.GetString("customer_name"),
		CustomerEmail:          r.GetString("customer_email"),
		CustomerPhone:          r.GetString("customer_phone"),
		Status:                 models.OrderStatus(r.GetString("status")),
		CreatedAt:              r.GetDateTime("created").Time(),
		PaidAt:                 timePtr(r.GetDateTime("paid_at")),
		CancelledAt:            timePtr(r.GetDateTime("cancelled_at")),
		RefundedAt:             timePtr(r.GetDateTime("refunded_at")),
	}
}

func applyOrder(r *core.Record, o *models.Order) {
	r.Set("stripe_session_id", o.StripeSessionID)
	r.Set("stripe_payment_intent_id", o.StripePaymentIntentID)
	r.Set("performance_id", o.PerformanceID)
	r.Set("performance_date", o.PerformanceDate)
	r.Set("performance_label", o.PerformanceLabel)
	r.Set("general_quantity", o.GeneralQuantity)
	r.Set("reserved_quantity", o.ReservedQuantity)
	r.Set("general_price", o.GeneralPrice)
	r.Set("reserved_price", o.ReservedPrice)
	r.Set("discounted_general_count", o.DiscountedGeneralCount)
	r.Set("discount_amount", o.DiscountAmount)
	r.Set("exchange_codes", models.JoinCodes(o.ExchangeCodes))
	r.Set("total_amount", o.TotalAmount)
	r.Set("customer_name", o.CustomerName)
	r.Set("customer_email", o.CustomerEmail)
	r.Set("customer_phone", o.CustomerPhone)
	r.Set("status", string(o.Status))
	setTime(r, "paid_at", o.PaidAt)
	setTime(r, "cancelled_at", o.CancelledAt)
	setTime(r, "refunded_at", o.RefundedAt)
}

func (s *Store) CreateOrder(ctx context.Context, o *models.Order) error {
	r, err := s.newRecord(collectionOrders)
	if err != nil {
		return err
	}
	if o.Status == "" {
		o.Status = models.OrderStatusPending
	}
	applyOrder(r, o)
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save order: %w", err)
	}
	o.ID = r.Id
	o.CreatedAt = r.GetDateTime("created").Time()
	return nil
}

func (s *Store) SaveOrder(ctx context.Context, o *models.Order) error {
	r, err := s.app.FindRecordById(collectionOrders, o.ID)
	if err != nil {
		if isNotFound(err) {
			return status.ErrOrderNotFound
		}
		return err
	}
	applyOrder(r, o)
	return s.app.SaveWithContext(ctx, r)
}

func (s *Store) FindOrderByID(id string) (*models.Order, error) {
	r, err := s.app.FindRecordById(collectionOrders, id)
	if err != nil {
		if isNotFound(err) {
			return nil, status.ErrOrderNotFound
		}
		return nil, err
	}
	return orderFromRecord(r), nil
}

func (s *Store) FindOrderBySessionID(sessionID string) (*models.Order, error) {
	r, err := s.app.FindFirstRecordByData(collectionOrders, "stripe_session_id", sessionID)
	if err != nil {
		if isNotFound(err) {
			return nil, status.ErrOrderNotFound
		}
		return nil, err
	}
	return orderFromRecord(r), nil
}

// OrderFilter narrows ListOrders; empty fields match everything.
type OrderFilter struct {
	Status          models.OrderStatus
	PerformanceDate string
	CustomerEmail   string
}

func (s *Store) ListOrders(f OrderFilter) ([]*models.Order, error) {
	exp := dbx.HashExp{}
	if f.Status != "" {
		exp["status"] = string(f.Status)
	}
	if f.PerformanceDate != "" {
		exp["performance_date"] = f.PerformanceDate
	}
	if f.CustomerEmail != "" {
		exp["customer_email"] = f.CustomerEmail
	}

	records := []*core.Record{}
	q := s.app.RecordQuery(collectionOrders).OrderBy("created DESC")
	if len(exp) > 0 {
		q = q.AndWhere(exp)
	}
	if err := q.All(&records); err != nil {
		return nil, err
	}

	orders := make([]*models.Order, 0, len(records))
	for _, r := range records {
		orders = append(orders, orderFromRecord(r))
	}
	return orders, nil
}

func (s *Store) OrderStats() (*models.OrderStats, error) {
	paid, err := s.ListOrders(OrderFilter{Status: models.OrderStatusPaid})
	if err != nil {
		return nil, err
	}

	stats := &models.OrderStats{TotalOrders: len(paid)}
	for _, o := range paid {
		stats.TotalRevenue += o.TotalAmount
		stats.TotalTickets += o.TicketCount()
		stats.TotalGeneralTickets += o.GeneralQuantity
		stats.TotalReservedTickets += o.ReservedQuantity
		stats.TotalDiscountedTickets += o.DiscountedGeneralCount
	}
	return stats, nil
}
