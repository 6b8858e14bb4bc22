package handlers

import (
	"net/http"

	"easel-ticket/internal/services"
	"easel-ticket/internal/status"
	"easel-ticket/internal/store"
	"easel-ticket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type OrderHandler struct {
	orders *services.OrderService
}

func NewOrderHandler(orders *services.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// List returns orders newest first, optionally filtered by ?status=,
// ?date= and ?email=.
// GET /api/orders
func (h *OrderHandler) List(e *core.RequestEvent) error {
	q := e.Request.URL.Query()
	f := store.OrderFilter{
		PerformanceDate: q.Get("date"),
		CustomerEmail:   q.Get("email"),
	}
	if raw := q.Get("status"); raw != "" {
		st, err := models.ParseOrderStatus(raw)
		if err != nil {
			return apis.NewBadRequestError("Unknown order status", nil)
		}
		f.Status = st
	}
	return h.list(e, f)
}

// GET /api/orders/status/{status}
func (h *OrderHandler) ByStatus(e *core.RequestEvent) error {
	st, err := models.ParseOrderStatus(e.Request.PathValue("status"))
	if err != nil {
		return apis.NewBadRequestError("Unknown order status", nil)
	}
	return h.list(e, store.OrderFilter{Status: st})
}

// GET /api/orders/performance/{date}
func (h *OrderHandler) ByPerformanceDate(e *core.RequestEvent) error {
	return h.list(e, store.OrderFilter{PerformanceDate: e.Request.PathValue("date")})
}

func (h *OrderHandler) list(e *core.RequestEvent, f store.OrderFilter) error {
	orders, err := h.orders.List(f)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, orders)
}

// GET /api/orders/{id}
func (h *OrderHandler) Get(e *core.RequestEvent) error {
	order, err := h.orders.Get(e.Request.PathValue("id"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, order)
}

// GetBySession is public so the purchase success page can show the order.
// GET /api/orders/session/{sessionId}
func (h *OrderHandler) GetBySession(e *core.RequestEvent) error {
	order, err := h.orders.GetBySession(e.Request.PathValue("sessionId"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, order)
}

// PUT /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(e *core.RequestEvent) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Status == "" {
		return apiError(status.Invalid("status is required"))
	}

	order, err := h.orders.UpdateStatus(e.Request.Context(), e.Request.PathValue("id"), req.Status)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, order)
}

// GET /api/orders/stats
func (h *OrderHandler) Stats(e *core.RequestEvent) error {
	stats, err := h.orders.Stats()
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, stats)
}
