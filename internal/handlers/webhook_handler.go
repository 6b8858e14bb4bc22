package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"easel-ticket/internal/clock"
	"easel-ticket/internal/services"
	"easel-ticket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// maxWebhookBody bounds the Stripe payload read into memory.
const maxWebhookBody = 1 << 16

type WebhookHandler struct {
	webhooks    *services.WebhookService
	fulfillment *services.FulfillmentService
	tickets     *services.TicketService
	orders      *services.OrderService
	clock       clock.Clock
}

func NewWebhookHandler(
	webhooks *services.WebhookService,
	fulfillment *services.FulfillmentService,
	tickets *services.TicketService,
	orders *services.OrderService,
	clk clock.Clock,
) *WebhookHandler {
	return &WebhookHandler{
		webhooks:    webhooks,
		fulfillment: fulfillment,
		tickets:     tickets,
		orders:      orders,
		clock:       clk,
	}
}

// Stripe receives provider events. The body is read raw because the
// signature covers the exact bytes sent.
// POST /api/webhook/stripe
func (h *WebhookHandler) Stripe(e *core.RequestEvent) error {
	payload, err := io.ReadAll(io.LimitReader(e.Request.Body, maxWebhookBody))
	if err != nil {
		return apis.NewBadRequestError("Unreadable body", err)
	}

	if err := h.webhooks.Handle(e.Request.Context(), payload, e.Request.Header.Get("Stripe-Signature")); err != nil {
		return apiError(err)
	}

	return e.String(http.StatusOK, "Received")
}

// CompleteBySession marks a pending order paid without a provider event,
// for payments confirmed out of band.
// POST /api/webhook/complete-by-session/{sessionId}
func (h *WebhookHandler) CompleteBySession(e *core.RequestEvent) error {
	sessionID := e.Request.PathValue("sessionId")

	order, err := h.orders.GetBySession(sessionID)
	if err != nil {
		return apiError(err)
	}
	if order.Status != models.OrderStatusPending {
		return e.JSON(http.StatusOK, map[string]any{
			"success": false,
			"message": "Order is not pending",
			"status":  order.Status,
		})
	}

	ref := fmt.Sprintf("pi_manual_%d", h.clock.Now().UnixMilli())
	result, err := h.fulfillment.Fulfill(e.Request.Context(), sessionID, ref, services.SourceManual)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"success":     true,
		"message":     "Order completed",
		"orderId":     order.ID,
		"ticketCount": len(result.Tickets),
	})
}

// Test simulates a completed checkout for a session. Registered only in
// development.
// POST /api/webhook/test
func (h *WebhookHandler) Test(e *core.RequestEvent) error {
	var req struct {
		SessionID string `json:"sessionId"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		return apis.NewBadRequestError("sessionId is required", nil)
	}

	ref := fmt.Sprintf("pi_test_%d", h.clock.Now().UnixMilli())
	result, err := h.fulfillment.Fulfill(e.Request.Context(), req.SessionID, ref, services.SourceTest)
	if err != nil {
		return apiError(err)
	}
	if result.NotFound {
		return apis.NewBadRequestError("Order not found for session: "+req.SessionID, nil)
	}

	tickets, err := h.tickets.ListByOrder(result.Order.ID)
	if err != nil {
		return apiError(err)
	}
	codes := make([]string, 0, len(tickets))
	for _, t := range tickets {
		codes = append(codes, t.TicketCode)
	}

	resp := map[string]any{
		"success":     true,
		"orderId":     result.Order.ID,
		"ticketCount": len(tickets),
		"ticketCodes": codes,
	}
	switch {
	case result.AlreadyPaid:
		resp["message"] = "Order already paid"
	case result.Skipped:
		resp["success"] = false
		resp["message"] = "Order is not pending"
	default:
		resp["message"] = "Order marked as paid (test)"
		resp["paymentIntentId"] = ref
	}
	return e.JSON(http.StatusOK, resp)
}

// OrderTickets lists the tickets of an order with their validity.
// GET /api/webhook/tickets/{orderId}
func (h *WebhookHandler) OrderTickets(e *core.RequestEvent) error {
	orderID := e.Request.PathValue("orderId")

	order, err := h.orders.Get(orderID)
	if err != nil {
		return apiError(err)
	}
	tickets, err := h.tickets.ListByOrder(orderID)
	if err != nil {
		return apiError(err)
	}

	list := make([]map[string]any, 0, len(tickets))
	for _, t := range tickets {
		list = append(list, map[string]any{
			"id":          t.ID,
			"ticketCode":  t.TicketCode,
			"ticketType":  t.TicketType,
			"isExchanged": t.IsExchanged,
			"isUsed":      t.IsUsed,
			"isValid":     !t.IsUsed && order.Status == models.OrderStatusPaid,
		})
	}

	return e.JSON(http.StatusOK, map[string]any{
		"orderId":     order.ID,
		"orderStatus": order.Status,
		"ticketCount": len(tickets),
		"tickets":     list,
	})
}
