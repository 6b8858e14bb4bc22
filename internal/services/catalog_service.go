package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"easel-ticket/internal/clock"
	"easel-ticket/internal/status"
	"easel-ticket/internal/store"
	"easel-ticket/models"

	"github.com/redis/go-redis/v9"
)

const availabilityTTL = 30 * time.Second

// CatalogService manages the public news feed and the performance line-up.
// Availability lookups are cached in Redis when a client is configured.
type CatalogService struct {
	store *store.Store
	redis *redis.Client
	clock clock.Clock
}

func NewCatalogService(s *store.Store, redisClient *redis.Client, clk clock.Clock) *CatalogService {
	return &CatalogService{store: s, redis: redisClient, clock: clk}
}

// News

func (s *CatalogService) ListNews() ([]*models.News, error) {
	return s.store.ListNews()
}

func (s *CatalogService) GetNews(id string) (*models.News, error) {
	return s.store.FindNewsByID(id)
}

func (s *CatalogService) CreateNews(ctx context.Context, n *models.News) error {
	if err := n.Validate(); err != nil {
		return status.Invalid(err.Error())
	}
	return s.store.CreateNews(ctx, n)
}

func (s *CatalogService) UpdateNews(ctx context.Context, n *models.News) error {
	if err := n.Validate(); err != nil {
		return status.Invalid(err.Error())
	}
	return s.store.SaveNews(ctx, n)
}

func (s *CatalogService) DeleteNews(ctx context.Context, id string) error {
	return s.store.DeleteNews(ctx, id)
}

// Performances

func (s *CatalogService) ListPerformances() ([]*models.Performance, error) {
	return s.store.ListPerformances(store.PerformanceFilter{})
}

func (s *CatalogService) PerformancesByVolume(volume string) ([]*models.Performance, error) {
	return s.store.ListPerformances(store.PerformanceFilter{Volume: volume})
}

// OnSale lists performances currently accepting purchases.
func (s *CatalogService) OnSale() ([]*models.Performance, error) {
	list, err := s.store.ListPerformances(store.PerformanceFilter{SaleStatus: models.SaleStatusOnSale})
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	onSale := make([]*models.Performance, 0, len(list))
	for _, p := range list {
		if p.IsOnSale(now) {
			onSale = append(onSale, p)
		}
	}
	return onSale, nil
}

// Upcoming lists performances dated today or later in Japan time.
func (s *CatalogService) Upcoming() ([]*models.Performance, error) {
	today := s.clock.Now().In(jst).Format(models.DateLayout)
	return s.store.ListPerformances(store.PerformanceFilter{FromDate: today})
}

func (s *CatalogService) GetPerformance(id string) (*models.Performance, error) {
	return s.store.FindPerformanceByID(id)
}

func (s *CatalogService) CreatePerformance(ctx context.Context, p *models.Performance) error {
	if err := p.Validate(); err != nil {
		return status.Invalid(err.Error())
	}
	return s.store.CreatePerformance(ctx, p)
}

func (s *CatalogService) UpdatePerformance(ctx context.Context, p *models.Performance) error {
	if err := p.Validate(); err != nil {
		return status.Invalid(err.Error())
	}
	if err := s.store.SavePerformance(ctx, p); err != nil {
		return err
	}
	s.InvalidateAvailability(ctx, p.ID)
	return nil
}

func (s *CatalogService) UpdateSaleStatus(ctx context.Context, id, raw string) (*models.Performance, error) {
	st, err := models.ParseSaleStatus(raw)
	if err != nil {
		return nil, status.Invalid(err.Error())
	}
	p, err := s.store.FindPerformanceByID(id)
	if err != nil {
		return nil, err
	}
	p.SaleStatus = st
	if err := s.store.SavePerformance(ctx, p); err != nil {
		return nil, err
	}
	s.InvalidateAvailability(ctx, id)
	return p, nil
}

func (s *CatalogService) DeletePerformance(ctx context.Context, id string) error {
	if err := s.store.DeletePerformance(ctx, id); err != nil {
		return err
	}
	s.InvalidateAvailability(ctx, id)
	return nil
}

func availabilityKey(id string) string {
	return fmt.Sprintf("performance:availability:%s", id)
}

func (s *CatalogService) Availability(ctx context.Context, id string) (*models.Availability, error) {
	if s.redis != nil {
		if raw, err := s.redis.Get(ctx, availabilityKey(id)).Bytes(); err == nil {
			var a models.Availability
			if json.Unmarshal(raw, &a) == nil {
				return &a, nil
			}
		} else if err != redis.Nil {
			slog.Warn("availability cache read", "performanceID", id, "error", err)
		}
	}

	p, err := s.store.FindPerformanceByID(id)
	if err != nil {
		return nil, err
	}
	a := &models.Availability{
		PerformanceID:     p.ID,
		GeneralRemaining:  p.GeneralRemaining(),
		ReservedRemaining: p.ReservedRemaining(),
		IsOnSale:          p.IsOnSale(s.clock.Now()),
		IsSoldOut:         p.IsSoldOut(),
	}

	if s.redis != nil {
		if raw, err := json.Marshal(a); err == nil {
			if err := s.redis.Set(ctx, availabilityKey(id), raw, availabilityTTL).Err(); err != nil {
				slog.Warn("availability cache write", "performanceID", id, "error", err)
			}
		}
	}
	return a, nil
}

// InvalidateAvailability drops the cached availability of a performance.
func (s *CatalogService) InvalidateAvailability(ctx context.Context, id string) {
	if s.redis == nil || strings.TrimSpace(id) == "" {
		return
	}
	if err := s.redis.Del(ctx, availabilityKey(id)).Err(); err != nil {
		slog.Warn("availability cache invalidate", "performanceID", id, "error", err)
	}
}
