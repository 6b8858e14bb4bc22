package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"easel-ticket/internal/status"
	"easel-ticket/internal/store"
	"easel-ticket/models"
	"easel-ticket/utils"
)

const (
	MaxGenerateCount = 50
	maxCodeAttempts  = 5
)

type ExchangeCodeService struct {
	store    *store.Store
	generate func() (string, error)
}

func NewExchangeCodeService(s *store.Store) *ExchangeCodeService {
	return &ExchangeCodeService{store: s, generate: utils.GenerateExchangeCode}
}

func (s *ExchangeCodeService) List() ([]*models.ExchangeCode, error) {
	return s.store.ListExchangeCodes()
}

func (s *ExchangeCodeService) Create(ctx context.Context, code, performerName string) (*models.ExchangeCode, error) {
	code = models.NormalizeCode(code)
	if code == "" {
		return nil, status.Invalid("Code is required.")
	}
	if strings.TrimSpace(performerName) == "" {
		return nil, status.Invalid("Performer name is required.")
	}

	c := &models.ExchangeCode{Code: code, PerformerName: strings.TrimSpace(performerName)}
	if err := s.store.CreateExchangeCode(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Generate creates count random codes for the performer. count is clamped
// to MaxGenerateCount.
func (s *ExchangeCodeService) Generate(ctx context.Context, performerName string, count int) ([]*models.ExchangeCode, error) {
	if strings.TrimSpace(performerName) == "" {
		return nil, status.Invalid("Performer name is required.")
	}
	if count <= 0 {
		return nil, status.Invalid("Count must be at least 1.")
	}
	count = min(count, MaxGenerateCount)

	codes := make([]*models.ExchangeCode, 0, count)
	for len(codes) < count {
		c, err := s.createRandom(ctx, strings.TrimSpace(performerName))
		if err != nil {
			return codes, err
		}
		codes = append(codes, c)
	}
	return codes, nil
}

func (s *ExchangeCodeService) createRandom(ctx context.Context, performerName string) (*models.ExchangeCode, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.generate()
		if err != nil {
			return nil, err
		}
		c := &models.ExchangeCode{Code: code, PerformerName: performerName}
		err = s.store.CreateExchangeCode(ctx, c)
		if errors.Is(err, status.ErrRefCodeDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	return nil, fmt.Errorf("no unique exchange code after %d attempts", maxCodeAttempts)
}

func (s *ExchangeCodeService) Validate(code string) (*models.CodeValidation, error) {
	code = models.NormalizeCode(code)
	v := &models.CodeValidation{Code: code}
	if code == "" {
		v.Message = "Please enter an exchange code."
		return v, nil
	}

	c, err := s.store.FindExchangeCode(code)
	if errors.Is(err, status.ErrRefCodeNotFound) {
		v.Message = "Invalid exchange code."
		return v, nil
	}
	if err != nil {
		return nil, err
	}
	if c.IsUsed {
		v.Message = "This exchange code has already been used."
		return v, nil
	}

	v.Valid = true
	v.Message = "Valid exchange code."
	v.PerformerName = c.PerformerName
	return v, nil
}

// ValidateBatch validates each code independently; a code repeated in the
// batch is reported invalid after its first occurrence.
func (s *ExchangeCodeService) ValidateBatch(codes []string) ([]*models.CodeValidation, int, error) {
	results := make([]*models.CodeValidation, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	valid := 0
	for _, raw := range codes {
		v, err := s.Validate(raw)
		if err != nil {
			return nil, 0, err
		}
		if v.Valid && seen[v.Code] {
			v.Valid = false
			v.PerformerName = ""
			v.Message = "Duplicate exchange code."
		}
		seen[v.Code] = true
		if v.Valid {
			valid++
		}
		results = append(results, v)
	}
	return results, valid, nil
}
