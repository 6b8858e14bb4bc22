package store

import (
	"context"
	"fmt"

	"easel-ticket/internal/status"
	"easel-ticket/models"

	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

func ticketFromRecord(r *core.Record) *models.Ticket {
	return &models.Ticket{
		ID:          r.Id,
		OrderID:     r.GetString("order_id"),
		TicketCode:  r.GetString("ticket_code"),
		TicketType:  models.TicketType(r.GetString("ticket_type")),
		IsExchanged: r.GetBool("is_exchanged"),
		IsUsed:      r.GetBool("is_used"),
		UsedAt:      timePtr(r.GetDateTime("used_at")),
		CreatedAt:   r.GetDateTime("created").Time(),
	}
}

// CreateTickets persists the tickets, assigning each a fresh UUID
// redemption code when it has none.
func (s *Store) CreateTickets(ctx context.Context, tickets []*models.Ticket) error {
	collection, err := s.app.FindCachedCollectionByNameOrId(collectionTickets)
	if err != nil {
		return err
	}

	for _, t := range tickets {
		if t.TicketCode == "" {
			t.TicketCode = uuid.NewString()
		}
		r := core.NewRecord(collection)
		r.Set("order_id", t.OrderID)
		r.Set("ticket_code", t.TicketCode)
		r.Set("ticket_type", string(t.TicketType))
		r.Set("is_exchanged", t.IsExchanged)
		r.Set("is_used", t.IsUsed)
		setTime(r, "used_at", t.UsedAt)
		if err := s.app.SaveWithContext(ctx, r); err != nil {
			return fmt.Errorf("save ticket: %w", err)
		}
		t.ID = r.Id
		t.CreatedAt = r.GetDateTime("created").Time()
	}
	return nil
}

func (s *Store) SaveTicket(ctx context.Context, t *models.Ticket) error {
	r, err := s.app.FindRecordById(collectionTickets, t.ID)
	if err != nil {
		if isNotFound(err) {
			return status.ErrTicketNotFound
		}
		return err
	}
	r.Set("is_used", t.IsUsed)
	setTime(r, "used_at", t.UsedAt)
	return s.app.SaveWithContext(ctx, r)
}

func (s *Store) FindTicketByCode(code string) (*models.Ticket, error) {
	r, err := s.app.FindFirstRecordByData(collectionTickets, "ticket_code", code)
	if err != nil {
		if isNotFound(err) {
			return nil, status.ErrTicketNotFound
		}
		return nil, err
	}
	return ticketFromRecord(r), nil
}

func (s *Store) ListTicketsByOrder(orderID string) ([]*models.Ticket, error) {
	return s.listTickets(dbx.HashExp{"order_id": orderID})
}

func (s *Store) ListTickets() ([]*models.Ticket, error) {
	return s.listTickets(nil)
}

func (s *Store) CountTicketsByOrder(orderID string) (int, error) {
	n, err := s.app.CountRecords(collectionTickets, dbx.HashExp{"order_id": orderID})
	return int(n), err
}

func (s *Store) listTickets(exp dbx.Expression) ([]*models.Ticket, error) {
	records := []*core.Record{}
	q := s.app.RecordQuery(collectionTickets).OrderBy("created ASC", "rowid ASC")
	if exp != nil {
		q = q.AndWhere(exp)
	}
	if err := q.All(&records); err != nil {
		return nil, err
	}

	tickets := make([]*models.Ticket, 0, len(records))
	for _, r := range records {
		tickets = append(tickets, ticketFromRecord(r))
	}
	return tickets, nil
}
