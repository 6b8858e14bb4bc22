package handlers

import (
	"net/http"

	"easel-ticket/internal/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type ExchangeCodeHandler struct {
	codes *services.ExchangeCodeService
}

func NewExchangeCodeHandler(codes *services.ExchangeCodeService) *ExchangeCodeHandler {
	return &ExchangeCodeHandler{codes: codes}
}

// GET /api/exchange-codes
func (h *ExchangeCodeHandler) List(e *core.RequestEvent) error {
	codes, err := h.codes.List()
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, codes)
}

// POST /api/exchange-codes
func (h *ExchangeCodeHandler) Create(e *core.RequestEvent) error {
	var req struct {
		Code          string `json:"code"`
		PerformerName string `json:"performerName"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	code, err := h.codes.Create(e.Request.Context(), req.Code, req.PerformerName)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"success": true, "code": code})
}

// Batch generates random codes for one performer.
// POST /api/exchange-codes/batch
func (h *ExchangeCodeHandler) Batch(e *core.RequestEvent) error {
	var req struct {
		PerformerName string `json:"performerName"`
		Count         int    `json:"count"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	codes, err := h.codes.Generate(e.Request.Context(), req.PerformerName, req.Count)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"success": true,
		"count":   len(codes),
		"codes":   codes,
	})
}

// POST /api/exchange-codes/validate
func (h *ExchangeCodeHandler) Validate(e *core.RequestEvent) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	v, err := h.codes.Validate(req.Code)
	if err != nil {
		return apiError(err)
	}
	if v.Code == "" {
		return e.JSON(http.StatusBadRequest, v)
	}
	return e.JSON(http.StatusOK, v)
}

// POST /api/exchange-codes/validate-batch
func (h *ExchangeCodeHandler) ValidateBatch(e *core.RequestEvent) error {
	var req struct {
		Codes []string `json:"codes"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	results, valid, err := h.codes.ValidateBatch(req.Codes)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"validCount": valid,
		"results":    results,
	})
}
