package models

import (
	"encoding/json"
	"testing"
	"time"

	"easel-ticket/internal/status"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		allowed  bool
	}{
		{OrderStatusPending, OrderStatusPaid, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPaid, OrderStatusRefunded, true},
		{OrderStatusPending, OrderStatusRefunded, false},
		{OrderStatusPaid, OrderStatusPending, false},
		{OrderStatusPaid, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPaid, false},
		{OrderStatusRefunded, OrderStatusPaid, false},
		{OrderStatusPaid, OrderStatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestOrder_TransitionToStampsTimestamps(t *testing.T) {
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)

	order := &Order{ID: "o1", Status: OrderStatusPending}
	require.NoError(t, order.MarkAsPaid("pi_123", now))
	assert.Equal(t, OrderStatusPaid, order.Status)
	assert.Equal(t, "pi_123", order.StripePaymentIntentID)
	require.NotNil(t, order.PaidAt)
	assert.Equal(t, now, *order.PaidAt)

	require.NoError(t, order.TransitionTo(OrderStatusRefunded, now.Add(time.Hour)))
	require.NotNil(t, order.RefundedAt)

	err := order.TransitionTo(OrderStatusPending, now)
	assert.ErrorIs(t, err, status.ErrInvalidTransition)
	assert.Equal(t, OrderStatusRefunded, order.Status)
}

func TestOrder_MarkAsPaidRejectsCancelled(t *testing.T) {
	order := &Order{ID: "o1", Status: OrderStatusCancelled}
	err := order.MarkAsPaid("pi_1", time.Now())
	assert.Error(t, err)
	assert.Empty(t, order.StripePaymentIntentID)
	assert.Nil(t, order.PaidAt)
}

func TestParseOrderStatus(t *testing.T) {
	st, err := ParseOrderStatus(" paid ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusPaid, st)

	_, err = ParseOrderStatus("shipped")
	assert.Error(t, err)
}

func TestSplitAndJoinCodes(t *testing.T) {
	assert.Equal(t, []string{"ABC", "DEF"}, SplitCodes(" abc, ,def,"))
	assert.Equal(t, []string{}, SplitCodes(""))
	assert.Equal(t, "ABC,DEF", JoinCodes([]string{"ABC", "DEF"}))
}

func TestBuildTickets_AllocatesExchangedToFirstGeneralSeats(t *testing.T) {
	order := &Order{
		ID:                     "o1",
		GeneralQuantity:        3,
		ReservedQuantity:       2,
		DiscountedGeneralCount: 2,
	}

	tickets := BuildTickets(order)
	require.Len(t, tickets, order.TicketCount())

	types := []TicketType{}
	exchanged := []bool{}
	for _, tk := range tickets {
		assert.Equal(t, "o1", tk.OrderID)
		types = append(types, tk.TicketType)
		exchanged = append(exchanged, tk.IsExchanged)
	}
	assert.Equal(t, []TicketType{
		TicketTypeGeneral, TicketTypeGeneral, TicketTypeGeneral,
		TicketTypeReserved, TicketTypeReserved,
	}, types)
	assert.Equal(t, []bool{true, true, false, false, false}, exchanged)
}

func TestBuildTickets_DiscountNeverSpillsIntoReserved(t *testing.T) {
	order := &Order{GeneralQuantity: 1, ReservedQuantity: 2, DiscountedGeneralCount: 3}

	tickets := BuildTickets(order)
	require.Len(t, tickets, 3)
	assert.True(t, tickets[0].IsExchanged)
	assert.False(t, tickets[1].IsExchanged)
	assert.False(t, tickets[2].IsExchanged)
}

func TestExchangeCode_MarkAsUsedOnce(t *testing.T) {
	now := time.Now()
	code := &ExchangeCode{Code: "ABCD2345"}

	assert.True(t, code.MarkAsUsed("order-1", now))
	assert.True(t, code.IsUsed)
	assert.Equal(t, "order-1", code.OrderID)

	assert.False(t, code.MarkAsUsed("order-2", now.Add(time.Minute)))
	assert.Equal(t, "order-1", code.OrderID)
	assert.Equal(t, now, *code.UsedAt)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "ABCD2345", NormalizeCode("  abcd2345 "))
	assert.Equal(t, "", NormalizeCode("   "))
}

func TestPerformance_Remaining(t *testing.T) {
	p := Performance{GeneralCapacity: 100, GeneralSold: 40, ReservedCapacity: 20, ReservedSold: 25}
	assert.Equal(t, 60, p.GeneralRemaining())
	assert.Equal(t, 0, p.ReservedRemaining())
	assert.False(t, p.IsSoldOut())

	p.GeneralSold = 100
	assert.True(t, p.IsSoldOut())
}

func TestPerformance_IsOnSale(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	before := now.Add(-time.Hour)
	after := now.Add(time.Hour)

	tests := []struct {
		name   string
		perf   Performance
		onSale bool
	}{
		{"not on sale", Performance{SaleStatus: SaleStatusNotOnSale}, false},
		{"on sale without window", Performance{SaleStatus: SaleStatusOnSale}, true},
		{"inside window", Performance{SaleStatus: SaleStatusOnSale, SaleStartAt: &before, SaleEndAt: &after}, true},
		{"before window", Performance{SaleStatus: SaleStatusOnSale, SaleStartAt: &after}, false},
		{"after window", Performance{SaleStatus: SaleStatusOnSale, SaleEndAt: &before}, false},
		{"ended", Performance{SaleStatus: SaleStatusEnded}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.onSale, tt.perf.IsOnSale(now))
		})
	}
}

func TestPerformance_Validate(t *testing.T) {
	p := Performance{
		Title:           "easel LIVE vol.2",
		PerformanceDate: "2025-12-20",
		PerformanceTime: "18:30",
		VenueName:       "Hall",
	}
	require.NoError(t, p.Validate())
	assert.Equal(t, SaleStatusNotOnSale, p.SaleStatus)

	p.PerformanceDate = "20/12/2025"
	assert.Error(t, p.Validate())

	p.PerformanceDate = "2025-12-20"
	p.SaleStatus = "HALF_OPEN"
	assert.Error(t, p.Validate())
}

func TestOrder_JSONOmitsUnsetTimestamps(t *testing.T) {
	order := Order{ID: "o1", Status: OrderStatusPending, ExchangeCodes: []string{}}

	data, err := json.Marshal(order)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "paid_at")
	assert.NotContains(t, raw, "cancelled_at")
	assert.Equal(t, "PENDING", raw["status"])
}

func TestTicket_UseOnce(t *testing.T) {
	ticket := &Ticket{TicketCode: "abc"}
	at := time.Date(2026, 11, 20, 18, 30, 0, 0, time.UTC)

	require.NoError(t, ticket.Use(at))
	assert.True(t, ticket.IsUsed)
	require.NotNil(t, ticket.UsedAt)
	assert.Equal(t, at, *ticket.UsedAt)

	assert.ErrorIs(t, ticket.Use(at.Add(time.Minute)), status.ErrTicketUsed)
	assert.Equal(t, at, *ticket.UsedAt)
}
