package handlers

import (
	"net/http"

	"easel-ticket/internal/services"
	"easel-ticket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type PaymentHandler struct {
	checkout *services.CheckoutService
}

func NewPaymentHandler(checkout *services.CheckoutService) *PaymentHandler {
	return &PaymentHandler{checkout: checkout}
}

// Checkout opens a payment session for the posted purchase form.
// POST /api/payment/checkout
func (h *PaymentHandler) Checkout(e *core.RequestEvent) error {
	var req models.CheckoutRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	resp, err := h.checkout.CreateCheckout(e.Request.Context(), &req)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, resp)
}
