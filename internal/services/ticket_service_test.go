package services

import (
	"context"
	"testing"
	"time"

	"easel-ticket/internal/clock"
	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func paidTickets(t *testing.T, env *testEnv, sessionID string) []*models.Ticket {
	t.Helper()
	svc := NewFulfillmentService(env.store, env.clock, nil, nil, time.Second)
	result, err := svc.Fulfill(context.Background(), sessionID, "pi_"+sessionID, SourceTest)
	require.NoError(t, err)
	require.NotEmpty(t, result.Tickets)
	return result.Tickets
}

func TestTicketVerify(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "cs_verify", nil)
	tickets := paidTickets(t, env, "cs_verify")
	svc := NewTicketService(env.store, env.clock)

	v, err := svc.Verify(tickets[0].TicketCode)
	require.NoError(t, err)
	assert.True(t, v.Valid)
	require.NotNil(t, v.Ticket.Order)
	assert.Equal(t, "Hanako", v.Ticket.Order.CustomerName)

	v, err = svc.Verify("no-such-ticket")
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Nil(t, v.Ticket)

	_, err = svc.Verify("  ")
	assert.True(t, status.IsValidation(err))
}

func TestTicketVerify_DoesNotConsume(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "cs_peek", nil)
	tickets := paidTickets(t, env, "cs_peek")
	svc := NewTicketService(env.store, env.clock)

	for range 2 {
		v, err := svc.Verify(tickets[0].TicketCode)
		require.NoError(t, err)
		assert.True(t, v.Valid)
	}
}

func TestTicketCheckIn_OnlyOnce(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "cs_door", nil)
	tickets := paidTickets(t, env, "cs_door")
	svc := NewTicketService(env.store, env.clock)

	info, err := svc.CheckIn(context.Background(), tickets[0].TicketCode)
	require.NoError(t, err)
	assert.True(t, info.IsUsed)
	require.NotNil(t, info.UsedAt)
	assert.True(t, testNow.Equal(*info.UsedAt))

	info, err = svc.CheckIn(context.Background(), tickets[0].TicketCode)
	assert.ErrorIs(t, err, status.ErrTicketUsed)
	require.NotNil(t, info)
	assert.True(t, testNow.Equal(*info.UsedAt))

	v, err := svc.Verify(tickets[0].TicketCode)
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.NotNil(t, v.UsedAt)
}

func TestTicketCheckIn_UnknownCode(t *testing.T) {
	env := newTestEnv(t)
	svc := NewTicketService(env.store, env.clock)

	info, err := svc.CheckIn(context.Background(), "missing")

	assert.Nil(t, info)
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestTicketCheckIn_RefundedOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, "cs_refund", nil)
	tickets := paidTickets(t, env, "cs_refund")

	orders := NewOrderService(env.store, env.clock)
	_, err := orders.UpdateStatus(context.Background(), order.ID, "REFUNDED")
	require.NoError(t, err)

	info, err := NewTicketService(env.store, env.clock).CheckIn(context.Background(), tickets[0].TicketCode)
	assert.ErrorIs(t, err, status.ErrTicketNotPaid)
	require.NotNil(t, info)
	assert.False(t, info.IsUsed)
}

func TestTicketStats(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "cs_stats", nil)
	tickets := paidTickets(t, env, "cs_stats")

	yesterday := clock.NewFixed(testNow.Add(-24 * time.Hour))
	_, err := NewTicketService(env.store, yesterday).CheckIn(context.Background(), tickets[0].TicketCode)
	require.NoError(t, err)

	svc := NewTicketService(env.store, env.clock)
	var reserved *models.Ticket
	for _, tk := range tickets {
		if tk.TicketType == models.TicketTypeReserved {
			reserved = tk
		}
	}
	require.NotNil(t, reserved)
	_, err = svc.CheckIn(context.Background(), reserved.TicketCode)
	require.NoError(t, err)

	stats, err := svc.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalTickets)
	assert.Equal(t, 2, stats.UsedTickets)
	assert.Equal(t, 1, stats.UnusedTickets)
	assert.Equal(t, 2, stats.GeneralTotal)
	assert.Equal(t, 1, stats.GeneralUsed)
	assert.Equal(t, 1, stats.ReservedTotal)
	assert.Equal(t, 1, stats.ReservedUsed)

	today, err := svc.TodayStats()
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", today.Date)
	assert.Equal(t, 1, today.TotalCheckedIn)
	assert.Equal(t, 1, today.ReservedCheckedIn)
	assert.Zero(t, today.GeneralCheckedIn)
}

func TestTicketTodayStats_UsesJapanTime(t *testing.T) {
	env := newTestEnv(t)
	env.seedOrder(t, "cs_jst", nil)
	tickets := paidTickets(t, env, "cs_jst")

	// 16:00 UTC is already the next day in Japan.
	late := clock.NewFixed(time.Date(2026, 10, 19, 16, 0, 0, 0, time.UTC))
	svc := NewTicketService(env.store, late)
	_, err := svc.CheckIn(context.Background(), tickets[0].TicketCode)
	require.NoError(t, err)

	stats, err := svc.TodayStats()
	require.NoError(t, err)
	assert.Equal(t, "2026-10-20", stats.Date)
	assert.Equal(t, 1, stats.TotalCheckedIn)
}

func TestTicketListByOrder(t *testing.T) {
	env := newTestEnv(t)
	order := env.seedOrder(t, "cs_list", nil)
	paidTickets(t, env, "cs_list")
	svc := NewTicketService(env.store, env.clock)

	tickets, err := svc.ListByOrder(order.ID)
	require.NoError(t, err)
	assert.Len(t, tickets, 3)

	_, err = svc.ListByOrder("missing")
	assert.ErrorIs(t, err, status.ErrOrderNotFound)
}
