package models

import (
	"time"

	"easel-ticket/internal/status"
)

type TicketType string

const (
	TicketTypeGeneral  TicketType = "GENERAL"
	TicketTypeReserved TicketType = "RESERVED"
)

type Ticket struct {
	ID          string     `json:"id"`
	OrderID     string     `json:"order_id"`
	TicketCode  string     `json:"ticket_code"`
	TicketType  TicketType `json:"ticket_type"`
	IsExchanged bool       `json:"is_exchanged"`
	IsUsed      bool       `json:"is_used"`
	UsedAt      *time.Time `json:"used_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Use admits the ticket at the given time. A ticket is admitted once.
func (t *Ticket) Use(at time.Time) error {
	if t.IsUsed {
		return status.ErrTicketUsed
	}
	t.IsUsed = true
	t.UsedAt = &at
	return nil
}

// BuildTickets lays out the tickets for a paid order: general seats first,
// the first DiscountedGeneralCount of them flagged as exchanged, then
// reserved seats. Codes and ids are left for the store to fill in.
func BuildTickets(o *Order) []*Ticket {
	tickets := make([]*Ticket, 0, o.TicketCount())
	for i := 0; i < o.GeneralQuantity; i++ {
		tickets = append(tickets, &Ticket{
			OrderID:     o.ID,
			TicketType:  TicketTypeGeneral,
			IsExchanged: i < o.DiscountedGeneralCount,
		})
	}
	for i := 0; i < o.ReservedQuantity; i++ {
		tickets = append(tickets, &Ticket{
			OrderID:    o.ID,
			TicketType: TicketTypeReserved,
		})
	}
	return tickets
}

// TicketInfo is the ticket view returned by verification and check-in,
// carrying the owning order summary.
type TicketInfo struct {
	Ticket
	Order *TicketOrderInfo `json:"order,omitempty"`
}

type TicketOrderInfo struct {
	ID               string      `json:"id"`
	CustomerName     string      `json:"customer_name"`
	PerformanceLabel string      `json:"performance_label"`
	PerformanceDate  string      `json:"performance_date"`
	Status           OrderStatus `json:"status"`
}

type TicketStats struct {
	TotalTickets  int `json:"total_tickets"`
	UsedTickets   int `json:"used_tickets"`
	UnusedTickets int `json:"unused_tickets"`
	GeneralTotal  int `json:"general_total"`
	GeneralUsed   int `json:"general_used"`
	ReservedTotal int `json:"reserved_total"`
	ReservedUsed  int `json:"reserved_used"`
}

type CheckInStats struct {
	Date              string `json:"date"`
	TotalCheckedIn    int    `json:"total_checked_in"`
	GeneralCheckedIn  int    `json:"general_checked_in"`
	ReservedCheckedIn int    `json:"reserved_checked_in"`
}
