package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"easel-ticket/internal/clock"
	"easel-ticket/internal/status"
	"easel-ticket/internal/store"
	"easel-ticket/models"
)

// Verification is the outcome of looking a ticket up at the door.
type Verification struct {
	Valid   bool               `json:"valid"`
	Message string             `json:"message"`
	UsedAt  *time.Time         `json:"used_at,omitempty"`
	Ticket  *models.TicketInfo `json:"ticket,omitempty"`
}

type TicketService struct {
	store *store.Store
	clock clock.Clock
}

func NewTicketService(s *store.Store, clk clock.Clock) *TicketService {
	return &TicketService{store: s, clock: clk}
}

func (s *TicketService) info(t *models.Ticket) *models.TicketInfo {
	info := &models.TicketInfo{Ticket: *t}
	if o, err := s.store.FindOrderByID(t.OrderID); err == nil {
		info.Order = &models.TicketOrderInfo{
			ID:               o.ID,
			CustomerName:     o.CustomerName,
			PerformanceLabel: o.PerformanceLabel,
			PerformanceDate:  o.PerformanceDate,
			Status:           o.Status,
		}
	}
	return info
}

// Verify reports whether the ticket would be admitted without using it.
func (s *TicketService) Verify(code string) (*Verification, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, status.Invalid("Ticket code is required.")
	}

	t, err := s.store.FindTicketByCode(code)
	if errors.Is(err, status.ErrTicketNotFound) {
		return &Verification{Message: "Ticket not found."}, nil
	}
	if err != nil {
		return nil, err
	}

	info := s.info(t)
	switch {
	case t.IsUsed:
		return &Verification{Message: "This ticket has already been used.", UsedAt: t.UsedAt, Ticket: info}, nil
	case info.Order != nil && info.Order.Status != models.OrderStatusPaid:
		return &Verification{Message: "The order for this ticket is not paid.", Ticket: info}, nil
	}
	return &Verification{Valid: true, Message: "Valid ticket.", Ticket: info}, nil
}

// CheckIn admits the ticket once. A second check-in reports ErrTicketUsed
// with the ticket as first admitted.
func (s *TicketService) CheckIn(ctx context.Context, code string) (*models.TicketInfo, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, status.Invalid("Ticket code is required.")
	}

	var checked *models.Ticket
	err := s.store.RunInTransaction(func(tx *store.Store) error {
		t, err := tx.FindTicketByCode(code)
		if err != nil {
			return err
		}
		checked = t
		if t.IsUsed {
			return status.ErrTicketUsed
		}
		o, err := tx.FindOrderByID(t.OrderID)
		if err != nil {
			return err
		}
		if o.Status != models.OrderStatusPaid {
			return status.ErrTicketNotPaid
		}
		if err := t.Use(s.clock.Now()); err != nil {
			return err
		}
		return tx.SaveTicket(ctx, t)
	})
	if checked == nil {
		return nil, err
	}
	return s.info(checked), err
}

func (s *TicketService) ListByOrder(orderID string) ([]*models.Ticket, error) {
	if _, err := s.store.FindOrderByID(orderID); err != nil {
		return nil, err
	}
	return s.store.ListTicketsByOrder(orderID)
}

func (s *TicketService) Stats() (*models.TicketStats, error) {
	tickets, err := s.store.ListTickets()
	if err != nil {
		return nil, err
	}

	stats := &models.TicketStats{TotalTickets: len(tickets)}
	for _, t := range tickets {
		if t.TicketType == models.TicketTypeReserved {
			stats.ReservedTotal++
		} else {
			stats.GeneralTotal++
		}
		if !t.IsUsed {
			continue
		}
		stats.UsedTickets++
		if t.TicketType == models.TicketTypeReserved {
			stats.ReservedUsed++
		} else {
			stats.GeneralUsed++
		}
	}
	stats.UnusedTickets = stats.TotalTickets - stats.UsedTickets
	return stats, nil
}

// TodayStats counts check-ins made today in Japan time.
func (s *TicketService) TodayStats() (*models.CheckInStats, error) {
	tickets, err := s.store.ListTickets()
	if err != nil {
		return nil, err
	}

	today := s.clock.Now().In(jst).Format(models.DateLayout)
	stats := &models.CheckInStats{Date: today}
	for _, t := range tickets {
		if !t.IsUsed || t.UsedAt == nil || t.UsedAt.In(jst).Format(models.DateLayout) != today {
			continue
		}
		stats.TotalCheckedIn++
		if t.TicketType == models.TicketTypeReserved {
			stats.ReservedCheckedIn++
		} else {
			stats.GeneralCheckedIn++
		}
	}
	return stats, nil
}
