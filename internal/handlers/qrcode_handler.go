package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"easel-ticket/internal/services"
	"easel-ticket/internal/status"
	"easel-ticket/internal/store"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type QRCodeHandler struct {
	store *store.Store
	qr    *services.QRService
}

func NewQRCodeHandler(s *store.Store, qr *services.QRService) *QRCodeHandler {
	return &QRCodeHandler{store: s, qr: qr}
}

func sizeParam(e *core.RequestEvent) int {
	size, err := strconv.Atoi(e.Request.URL.Query().Get("size"))
	if err != nil {
		return services.DefaultQRSize
	}
	return size
}

func (h *QRCodeHandler) ticketCode(e *core.RequestEvent) (string, error) {
	code := strings.TrimSpace(e.Request.PathValue("ticketCode"))
	if _, err := h.store.FindTicketByCode(code); err != nil {
		if errors.Is(err, status.ErrTicketNotFound) {
			return "", apis.NewNotFoundError("Ticket not found.", nil)
		}
		return "", apiError(err)
	}
	return code, nil
}

// GET /api/qrcode/ticket/{ticketCode}
func (h *QRCodeHandler) TicketPNG(e *core.RequestEvent) error {
	code, err := h.ticketCode(e)
	if err != nil {
		return err
	}

	png, err := h.qr.PNG(code, sizeParam(e))
	if err != nil {
		return apiError(err)
	}
	e.Response.Header().Set("Cache-Control", "private, max-age=3600")
	return e.Blob(http.StatusOK, "image/png", png)
}

// GET /api/qrcode/ticket/{ticketCode}/base64
func (h *QRCodeHandler) TicketBase64(e *core.RequestEvent) error {
	code, err := h.ticketCode(e)
	if err != nil {
		return err
	}

	uri, err := h.qr.DataURI(code, sizeParam(e))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"ticketCode": code,
		"qrCode":     uri,
	})
}

// GET /api/qrcode/generate?text=
func (h *QRCodeHandler) Generate(e *core.RequestEvent) error {
	text := e.Request.URL.Query().Get("text")
	if strings.TrimSpace(text) == "" {
		return apis.NewBadRequestError("text is required", nil)
	}

	png, err := h.qr.PNG(text, sizeParam(e))
	if err != nil {
		return apiError(err)
	}
	return e.Blob(http.StatusOK, "image/png", png)
}
