package store

import (
	"context"
	"fmt"
	"sort"

	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func exchangeCodeFromRecord(r *core.Record) *models.ExchangeCode {
	return &models.ExchangeCode{
		ID:            r.Id,
		Code:          r.GetString("code"),
		PerformerName: r.GetString("performer_name"),
		IsUsed:        r.GetBool("is_used"),
		UsedAt:        timePtr(r.GetDateTime("used_at")),
		OrderID:       r.GetString("order_id"),
		CreatedAt:     r.GetDateTime("created").Time(),
	}
}

func (s *Store) CreateExchangeCode(ctx context.Context, c *models.ExchangeCode) error {
	c.Code = models.NormalizeCode(c.Code)
	exists, err := s.ExchangeCodeExists(c.Code)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", status.ErrRefCodeDuplicate, c.Code)
	}

	r, err := s.newRecord(collectionExchangeCodes)
	if err != nil {
		return err
	}
	r.Set("code", c.Code)
	r.Set("performer_name", c.PerformerName)
	r.Set("is_used", c.IsUsed)
	if err := s.app.SaveWithContext(ctx, r); err != nil {
		return fmt.Errorf("save exchange code: %w", err)
	}
	c.ID = r.Id
	c.CreatedAt = r.GetDateTime("created").Time()
	return nil
}

func (s *Store) SaveExchangeCode(ctx context.Context, c *models.ExchangeCode) error {
	r, err := s.app.FindRecordById(collectionExchangeCodes, c.ID)
	if err != nil {
		if isNotFound(err) {
			return status.ErrRefCodeNotFound
		}
		return err
	}
	r.Set("is_used", c.IsUsed)
	setTime(r, "used_at", c.UsedAt)
	r.Set("order_id", c.OrderID)
	return s.app.SaveWithContext(ctx, r)
}

func (s *Store) FindExchangeCode(code string) (*models.ExchangeCode, error) {
	r, err := s.app.FindFirstRecordByData(collectionExchangeCodes, "code", models.NormalizeCode(code))
	if err != nil {
		if isNotFound(err) {
			return nil, status.ErrRefCodeNotFound
		}
		return nil, err
	}
	return exchangeCodeFromRecord(r), nil
}

func (s *Store) ExchangeCodeExists(code string) (bool, error) {
	n, err := s.app.CountRecords(collectionExchangeCodes, dbx.HashExp{"code": models.NormalizeCode(code)})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListExchangeCodes returns unused codes first, newest first within each group.
func (s *Store) ListExchangeCodes() ([]*models.ExchangeCode, error) {
	records, err := s.app.FindAllRecords(collectionExchangeCodes)
	if err != nil {
		return nil, err
	}

	codes := make([]*models.ExchangeCode, 0, len(records))
	for _, r := range records {
		codes = append(codes, exchangeCodeFromRecord(r))
	}
	sort.SliceStable(codes, func(i, j int) bool {
		if codes[i].IsUsed != codes[j].IsUsed {
			return !codes[i].IsUsed
		}
		return codes[i].CreatedAt.After(codes[j].CreatedAt)
	})
	return codes, nil
}
