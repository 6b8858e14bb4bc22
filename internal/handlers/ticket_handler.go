package handlers

import (
	"errors"
	"net/http"

	"easel-ticket/internal/services"
	"easel-ticket/internal/status"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type TicketHandler struct {
	tickets *services.TicketService
}

func NewTicketHandler(tickets *services.TicketService) *TicketHandler {
	return &TicketHandler{tickets: tickets}
}

type ticketCodeRequest struct {
	TicketCode string `json:"ticketCode"`
}

// Verify looks a ticket up without admitting it.
// POST /api/tickets/verify
func (h *TicketHandler) Verify(e *core.RequestEvent) error {
	var req ticketCodeRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	v, err := h.tickets.Verify(req.TicketCode)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, v)
}

// CheckIn admits a ticket. Refusals are reported in the body with 200 so
// door staff see the ticket they scanned.
// POST /api/tickets/check-in
func (h *TicketHandler) CheckIn(e *core.RequestEvent) error {
	var req ticketCodeRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	info, err := h.tickets.CheckIn(e.Request.Context(), req.TicketCode)
	switch {
	case err == nil:
		return e.JSON(http.StatusOK, map[string]any{
			"success":     true,
			"message":     "Check-in accepted.",
			"ticket":      info,
			"checkedInAt": info.UsedAt,
		})
	case errors.Is(err, status.ErrTicketNotFound):
		return e.JSON(http.StatusOK, map[string]any{
			"success": false,
			"error":   "Ticket not found.",
		})
	case errors.Is(err, status.ErrTicketUsed):
		return e.JSON(http.StatusOK, map[string]any{
			"success": false,
			"error":   "This ticket has already been used.",
			"usedAt":  info.UsedAt,
			"ticket":  info,
		})
	case errors.Is(err, status.ErrTicketNotPaid):
		return e.JSON(http.StatusOK, map[string]any{
			"success": false,
			"error":   "The order for this ticket is not paid.",
			"ticket":  info,
		})
	}
	return apiError(err)
}

// GET /api/tickets/stats
func (h *TicketHandler) Stats(e *core.RequestEvent) error {
	stats, err := h.tickets.Stats()
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, stats)
}

// GET /api/tickets/stats/today
func (h *TicketHandler) TodayStats(e *core.RequestEvent) error {
	stats, err := h.tickets.TodayStats()
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, stats)
}
