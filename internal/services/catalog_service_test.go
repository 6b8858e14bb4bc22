package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogNews(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCatalogService(env.store, nil, env.clock)
	ctx := context.Background()

	old := &models.News{Title: "Vol.2 report", PublishedAt: testNow.Add(-48 * time.Hour), Category: "report"}
	fresh := &models.News{Title: "Vol.3 on sale", PublishedAt: testNow, Category: "info"}
	require.NoError(t, svc.CreateNews(ctx, old))
	require.NoError(t, svc.CreateNews(ctx, fresh))

	err := svc.CreateNews(ctx, &models.News{PublishedAt: testNow})
	assert.True(t, status.IsValidation(err))

	list, err := svc.ListNews()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, fresh.ID, list[0].ID)

	fresh.Title = "Vol.3 sold out"
	require.NoError(t, svc.UpdateNews(ctx, fresh))
	got, err := svc.GetNews(fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vol.3 sold out", got.Title)

	require.NoError(t, svc.DeleteNews(ctx, old.ID))
	_, err = svc.GetNews(old.ID)
	assert.ErrorIs(t, err, status.ErrNewsNotFound)
}

func TestCatalogOnSaleAndUpcoming(t *testing.T) {
	env := newTestEnv(t)
	later := testNow.Add(24 * time.Hour)
	env.seedPerformance(t, func(p *models.Performance) { p.Title = "open" })
	env.seedPerformance(t, func(p *models.Performance) {
		p.Title = "not yet"
		p.SaleStartAt = &later
	})
	env.seedPerformance(t, func(p *models.Performance) {
		p.Title = "draft"
		p.SaleStatus = models.SaleStatusNotOnSale
	})
	env.seedPerformance(t, func(p *models.Performance) {
		p.Title = "last year"
		p.PerformanceDate = "2025-11-20"
		p.SaleStatus = models.SaleStatusEnded
	})
	env.seedPerformance(t, func(p *models.Performance) {
		p.Title = "today"
		p.PerformanceDate = "2026-10-19"
		p.Volume = "vol2"
	})
	svc := NewCatalogService(env.store, nil, env.clock)

	onSale, err := svc.OnSale()
	require.NoError(t, err)
	titles := func(list []*models.Performance) []string {
		out := make([]string, 0, len(list))
		for _, p := range list {
			out = append(out, p.Title)
		}
		return out
	}
	assert.ElementsMatch(t, []string{"open", "today"}, titles(onSale))

	upcoming, err := svc.Upcoming()
	require.NoError(t, err)
	assert.Len(t, upcoming, 4)
	assert.Equal(t, "today", upcoming[0].Title)

	vol2, err := svc.PerformancesByVolume("vol2")
	require.NoError(t, err)
	assert.Equal(t, []string{"today"}, titles(vol2))
}

func TestCatalogUpdateSaleStatus(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPerformance(t, nil)
	svc := NewCatalogService(env.store, nil, env.clock)

	updated, err := svc.UpdateSaleStatus(context.Background(), p.ID, "sold_out")
	require.NoError(t, err)
	assert.Equal(t, models.SaleStatusSoldOut, updated.SaleStatus)

	_, err = svc.UpdateSaleStatus(context.Background(), p.ID, "maybe")
	assert.True(t, status.IsValidation(err))

	_, err = svc.UpdateSaleStatus(context.Background(), "missing", "ON_SALE")
	assert.ErrorIs(t, err, status.ErrPerformanceNotFound)
}

func TestCatalogCreatePerformance_Validates(t *testing.T) {
	env := newTestEnv(t)
	svc := NewCatalogService(env.store, nil, env.clock)

	err := svc.CreatePerformance(context.Background(), &models.Performance{
		Title:           "bad date",
		VenueName:       "Hall",
		PerformanceTime: "19:00",
		PerformanceDate: "11/20",
	})
	assert.True(t, status.IsValidation(err))

	p := &models.Performance{
		Title:           "ok",
		VenueName:       "Hall",
		PerformanceTime: "19:00",
		PerformanceDate: "2026-11-20",
	}
	require.NoError(t, svc.CreatePerformance(context.Background(), p))
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.SaleStatusNotOnSale, p.SaleStatus)
}

func TestCatalogAvailability_CachesInRedis(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPerformance(t, func(p *models.Performance) {
		p.GeneralSold = 98
		p.ReservedSold = 10
	})
	key := "performance:availability:" + p.ID

	want := &models.Availability{
		PerformanceID:     p.ID,
		GeneralRemaining:  2,
		ReservedRemaining: 0,
		IsOnSale:          true,
	}
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	client, mock := redismock.NewClientMock()
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, raw, 30*time.Second).SetVal("OK")
	mock.ExpectGet(key).SetVal(string(raw))
	mock.ExpectDel(key).SetVal(1)

	svc := NewCatalogService(env.store, client, env.clock)

	got, err := svc.Availability(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	cached, err := svc.Availability(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, want, cached)

	svc.InvalidateAvailability(context.Background(), p.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogAvailability_WithoutRedis(t *testing.T) {
	env := newTestEnv(t)
	p := env.seedPerformance(t, func(p *models.Performance) {
		p.GeneralSold = 100
		p.ReservedSold = 12
	})
	svc := NewCatalogService(env.store, nil, env.clock)

	a, err := svc.Availability(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Zero(t, a.GeneralRemaining)
	assert.Zero(t, a.ReservedRemaining)
	assert.True(t, a.IsSoldOut)

	_, err = svc.Availability(context.Background(), "missing")
	assert.ErrorIs(t, err, status.ErrPerformanceNotFound)
}
