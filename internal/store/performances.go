package store

import (
	"context"
	"fmt"

	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func performanceFromRecord(r *core.Record) *models.Performance {
	return &models.Performance{
		ID:               r.Id,
		Title:            r.GetString("title"),
		Volume:           r.GetString("volume"),
		PerformanceDate:  r.GetString("performance_date"),
		PerformanceTime:  r.GetString("performance_time"),
		DoorsOpenTime:    r.GetString("doors_open_time"),
		VenueName:        r.GetString("venue_name"),
		VenueAddress:     r.GetString("venue_address"),
		VenueAccess:      r.GetString("venue_access"),
		GeneralPrice:     r.GetInt("general_price"),
		ReservedPrice:    r.GetInt("reserved_price"),
		GeneralCapacity:  r.GetInt("general_capacity"),
		ReservedCapacity: r.GetInt("reserved_capacity"),
		GeneralSold:      r.GetInt("general_sold"),
		ReservedSold:     r.GetInt("reserved_sold"),
		SaleStatus:       models.SaleStatus(r.GetString("sale_status")),
		SaleStartAt:      timePtr(r.GetDateTime("sale_start_at")),
		SaleEndAt:        timePtr(r.GetDateTime("sale_end_at")),
		FlyerImageURL:    r.GetString("flyer_image_url"),
		Description:      r.GetString("description"),
		CreatedAt:        r.GetDateTime("created").Time(),
		UpdatedAt:        r.GetDateTime("updated").Time(),
	}
}

func applyPerformance(r *core.Record, p *models.Performance) {
	r.Set("title", p.Title)
	r.Set("volume", p.Volume)
	r.Set("performance_date", p.PerformanceDate)
	r.Set("performance_time", p.PerformanceTime)
	r.Set("doors_open_time", p.DoorsOpenTime)
	r.Set("venue_name", p.VenueName)
	r.Set("venue_address", p.VenueAddress)
	r.Set("venue_access", p.VenueAccess)
	r.Set("general_price", p.GeneralPrice)
	r.Set("reserved_price", p.ReservedPrice)
	r.Set("general_capacity", p.GeneralCapacity)
	r.Set("reserved_capacity", p.ReservedCapacity)
	r.Set("general_sold", p.GeneralSold)
	r.Set("reserved_sold", p.ReservedSold)
	r.Set("sale_status", string(p.SaleStatus))
	setTime(r, "sale_start_at", p.SaleStartAt)
	setTime(r, "sale_end_at", p.SaleEndAt)
	r.Set("flyer_image_url", p.FlyerImageURL)
	r.Set("description", p.Description)
}

func (s *Store) CreatePerformance(ctx context.Context, p *models.Performance) error {
	r, err := s.newRecord(collectionPerformances)
	if err != nil {
		return err
	}
	applyPerformance(r, p)
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save performance: %w", err)
	}
	*p = *performanceFromRecord(r)
	return nil
}

func (s *Store) SavePerformance(ctx context.Context, p *models.Performance) error {
	r, err := s.app.FindRecordById(collectionPerformances, p.ID)
	if err != nil {
		if isNotFound(err) {
			return status.ErrPerformanceNotFound
		}
		return err
	}
	applyPerformance(r, p)
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return err
	}
	p.UpdatedAt = r.GetDateTime("updated").Time()
	return nil
}

func (s *Store) DeletePerformance(ctx context.Context, id string) error {
	r, err := s.app.FindRecordById(collectionPerformances, id)
	if err != nil {
		if isNotFound(err) {
			return status.ErrPerformanceNotFound
		}
		return err
	}
	return s.app.DeleteWithContext(ctx, r)
}

func (s *Store) FindPerformanceByID(id string) (*models.Performance, error) {
	r, err := s.app.FindRecordById(collectionPerformances, id)
	if err != nil {
		if isNotFound(err) {
			return nil, status.ErrPerformanceNotFound
		}
		return nil, err
	}
	return performanceFromRecord(r), nil
}

// PerformanceFilter narrows ListPerformances; empty fields match everything.
type PerformanceFilter struct {
	Volume     string
	SaleStatus models.SaleStatus
	FromDate   string
}

func (s *Store) ListPerformances(f PerformanceFilter) ([]*models.Performance, error) {
	records := []*core.Record{}
	q := s.app.RecordQuery(collectionPerformances).OrderBy("performance_date ASC", "performance_time ASC")
	if f.Volume != "" {
		q = q.AndWhere(dbx.HashExp{"volume": f.Volume})
	}
	if f.SaleStatus != "" {
		q = q.AndWhere(dbx.HashExp{"sale_status": string(f.SaleStatus)})
	}
	if f.FromDate != "" {
		q = q.AndWhere(dbx.NewExp("performance_date >= {:from}", dbx.Params{"from": f.FromDate}))
	}
	if err := q.All(&records); err != nil {
		return nil, err
	}

	performances := make([]*models.Performance, 0, len(records))
	for _, r := range records {
		performances = append(performances, performanceFromRecord(r))
	}
	return performances, nil
}

// AddSold increments the sold counters of a performance. Counters may
// exceed capacity; remaining seats are clamped at zero when read.
func (s *Store) AddSold(ctx context.Context, id string, general, reserved int) error {
	r, err := s.app.FindRecordById(collectionPerformances, id)
	if err != nil {
		if isNotFound(err) {
			return status.ErrPerformanceNotFound
		}
		return err
	}
	r.Set("general_sold+", general)
	r.Set("reserved_sold+", reserved)
	return s.app.SaveWithContext(ctx, r)
}
