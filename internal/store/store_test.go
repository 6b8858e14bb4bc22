package store

import (
	"context"
	"testing"
	"time"

	"easel-ticket/internal/status"
	"easel-ticket/internal/testutil"
	"easel-ticket/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	return New(testutil.NewApp(t))
}

func samplePerformance() *models.Performance {
	return &models.Performance{
		Title:            "easel LIVE vol.3",
		Volume:           "vol3",
		PerformanceDate:  "2026-11-20",
		PerformanceTime:  "19:00",
		VenueName:        "Shinjuku Hall",
		GeneralPrice:     4500,
		ReservedPrice:    5500,
		GeneralCapacity:  100,
		ReservedCapacity: 20,
		SaleStatus:       models.SaleStatusOnSale,
	}
}

func sampleOrder(sessionID string) *models.Order {
	return &models.Order{
		StripeSessionID:  sessionID,
		PerformanceDate:  "2026-11-20",
		GeneralQuantity:  2,
		ReservedQuantity: 1,
		GeneralPrice:     4500,
		ReservedPrice:    5500,
		TotalAmount:      14500,
		CustomerName:     "Hanako",
		CustomerEmail:    "hanako@example.com",
	}
}

func TestOrderLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	o := sampleOrder("cs_test_1")
	o.ExchangeCodes = []string{"abc", "DEF"}
	require.NoError(t, s.CreateOrder(ctx, o))
	assert.NotEmpty(t, o.ID)
	assert.Equal(t, models.OrderStatusPending, o.Status)

	found, err := s.FindOrderBySessionID("cs_test_1")
	require.NoError(t, err)
	assert.Equal(t, o.ID, found.ID)
	assert.Equal(t, []string{"ABC", "DEF"}, found.ExchangeCodes)
	assert.Nil(t, found.PaidAt)

	paidAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, found.MarkAsPaid("pi_1", paidAt))
	require.NoError(t, s.SaveOrder(ctx, found))

	reloaded, err := s.FindOrderByID(o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, reloaded.Status)
	assert.Equal(t, "pi_1", reloaded.StripePaymentIntentID)
	require.NotNil(t, reloaded.PaidAt)
	assert.True(t, paidAt.Equal(*reloaded.PaidAt))
}

func TestFindOrderNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.FindOrderBySessionID("cs_missing")
	assert.ErrorIs(t, err, status.ErrOrderNotFound)

	_, err = s.FindOrderByID("missing")
	assert.ErrorIs(t, err, status.ErrOrderNotFound)
}

func TestDuplicateSessionIDRejected(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateOrder(ctx, sampleOrder("cs_dup")))
	assert.Error(t, s.CreateOrder(ctx, sampleOrder("cs_dup")))
}

func TestListOrdersAndStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	paid := sampleOrder("cs_paid")
	paid.Status = models.OrderStatusPaid
	paid.DiscountedGeneralCount = 1
	require.NoError(t, s.CreateOrder(ctx, paid))
	require.NoError(t, s.CreateOrder(ctx, sampleOrder("cs_pending")))

	all, err := s.ListOrders(OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyPaid, err := s.ListOrders(OrderFilter{Status: models.OrderStatusPaid})
	require.NoError(t, err)
	require.Len(t, onlyPaid, 1)
	assert.Equal(t, "cs_paid", onlyPaid[0].StripeSessionID)

	stats, err := s.OrderStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalOrders)
	assert.Equal(t, 14500, stats.TotalRevenue)
	assert.Equal(t, 3, stats.TotalTickets)
	assert.Equal(t, 1, stats.TotalDiscountedTickets)
}

func TestTicketsKeepBuildOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	o := sampleOrder("cs_tickets")
	o.DiscountedGeneralCount = 1
	require.NoError(t, s.CreateOrder(ctx, o))

	tickets := models.BuildTickets(o)
	require.NoError(t, s.CreateTickets(ctx, tickets))
	for _, tk := range tickets {
		assert.NotEmpty(t, tk.ID)
		assert.Len(t, tk.TicketCode, 36)
	}

	listed, err := s.ListTicketsByOrder(o.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, models.TicketTypeGeneral, listed[0].TicketType)
	assert.True(t, listed[0].IsExchanged)
	assert.False(t, listed[1].IsExchanged)
	assert.Equal(t, models.TicketTypeReserved, listed[2].TicketType)

	n, err := s.CountTicketsByOrder(o.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	byCode, err := s.FindTicketByCode(listed[2].TicketCode)
	require.NoError(t, err)
	assert.Equal(t, listed[2].ID, byCode.ID)

	_, err = s.FindTicketByCode("nope")
	assert.ErrorIs(t, err, status.ErrTicketNotFound)
}

func TestExchangeCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first := &models.ExchangeCode{Code: " abcd2345 ", PerformerName: "Taro"}
	require.NoError(t, s.CreateExchangeCode(ctx, first))
	assert.Equal(t, "ABCD2345", first.Code)

	err := s.CreateExchangeCode(ctx, &models.ExchangeCode{Code: "ABCD2345", PerformerName: "Jiro"})
	assert.ErrorIs(t, err, status.ErrRefCodeDuplicate)

	second := &models.ExchangeCode{Code: "WXYZ6789", PerformerName: "Jiro"}
	require.NoError(t, s.CreateExchangeCode(ctx, second))

	found, err := s.FindExchangeCode("abcd2345")
	require.NoError(t, err)
	assert.Equal(t, "Taro", found.PerformerName)

	require.True(t, found.MarkAsUsed("order1", time.Now()))
	require.NoError(t, s.SaveExchangeCode(ctx, found))

	codes, err := s.ListExchangeCodes()
	require.NoError(t, err)
	require.Len(t, codes, 2)
	assert.Equal(t, "WXYZ6789", codes[0].Code)
	assert.True(t, codes[1].IsUsed)
	assert.Equal(t, "order1", codes[1].OrderID)

	_, err = s.FindExchangeCode("ZZZZ")
	assert.ErrorIs(t, err, status.ErrRefCodeNotFound)
}

func TestPerformanceSoldCounters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p := samplePerformance()
	require.NoError(t, s.CreatePerformance(ctx, p))
	require.NotEmpty(t, p.ID)

	require.NoError(t, s.AddSold(ctx, p.ID, 3, 1))
	require.NoError(t, s.AddSold(ctx, p.ID, 2, 0))

	got, err := s.FindPerformanceByID(p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.GeneralSold)
	assert.Equal(t, 1, got.ReservedSold)
	assert.Equal(t, 95, got.GeneralRemaining())

	assert.ErrorIs(t, s.AddSold(ctx, "missing", 1, 0), status.ErrPerformanceNotFound)
}

func TestListPerformancesFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	early := samplePerformance()
	early.PerformanceDate = "2026-01-10"
	early.Volume = "vol1"
	late := samplePerformance()
	late.SaleStatus = models.SaleStatusNotOnSale
	require.NoError(t, s.CreatePerformance(ctx, late))
	require.NoError(t, s.CreatePerformance(ctx, early))

	all, err := s.ListPerformances(PerformanceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "2026-01-10", all[0].PerformanceDate)

	vol1, err := s.ListPerformances(PerformanceFilter{Volume: "vol1"})
	require.NoError(t, err)
	assert.Len(t, vol1, 1)

	upcoming, err := s.ListPerformances(PerformanceFilter{FromDate: "2026-06-01"})
	require.NoError(t, err)
	require.Len(t, upcoming, 1)
	assert.Equal(t, late.ID, upcoming[0].ID)

	onSale, err := s.ListPerformances(PerformanceFilter{SaleStatus: models.SaleStatusOnSale})
	require.NoError(t, err)
	require.Len(t, onSale, 1)
	assert.Equal(t, early.ID, onSale[0].ID)

	require.NoError(t, s.DeletePerformance(ctx, early.ID))
	_, err = s.FindPerformanceByID(early.ID)
	assert.ErrorIs(t, err, status.ErrPerformanceNotFound)
}

func TestNewsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	older := &models.News{Title: "Lineup", PublishedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Category: "info"}
	newer := &models.News{Title: "Tickets", PublishedAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), Category: "ticket"}
	require.NoError(t, s.CreateNews(ctx, older))
	require.NoError(t, s.CreateNews(ctx, newer))

	list, err := s.ListNews()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Tickets", list[0].Title)

	newer.Title = "Tickets on sale"
	require.NoError(t, s.SaveNews(ctx, newer))
	got, err := s.FindNewsByID(newer.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tickets on sale", got.Title)

	require.NoError(t, s.DeleteNews(ctx, older.ID))
	assert.ErrorIs(t, s.DeleteNews(ctx, older.ID), status.ErrNewsNotFound)
}

func TestTransactionRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.RunInTransaction(func(tx *Store) error {
		if err := tx.CreateOrder(ctx, sampleOrder("cs_rollback")); err != nil {
			return err
		}
		return status.ErrSoldOut
	})
	assert.ErrorIs(t, err, status.ErrSoldOut)

	_, err = s.FindOrderBySessionID("cs_rollback")
	assert.ErrorIs(t, err, status.ErrOrderNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.EnsureAdmin(ctx, "admin@example.com", "secret-password", "Admin")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = s.EnsureAdmin(ctx, "admin@example.com", "other-password", "Admin")
	require.NoError(t, err)
	assert.False(t, created)

	r, err := s.FindAdminByEmail("admin@example.com")
	require.NoError(t, err)
	assert.True(t, r.ValidatePassword("secret-password"))
	assert.Equal(t, "SUPER_ADMIN", AdminFromRecord(r).Role)

	_, err = s.FindAdminByEmail("nobody@example.com")
	assert.ErrorIs(t, err, status.ErrInvalidCredentials)
}
