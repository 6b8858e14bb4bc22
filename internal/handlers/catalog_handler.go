package handlers

import (
	"net/http"

	"easel-ticket/internal/services"
	"easel-ticket/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// CatalogHandler serves the news feed and the performance line-up. Reads
// are public; writes are mounted behind admin auth.
type CatalogHandler struct {
	catalog *services.CatalogService
}

func NewCatalogHandler(catalog *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /api/news
func (h *CatalogHandler) ListNews(e *core.RequestEvent) error {
	news, err := h.catalog.ListNews()
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, news)
}

// GET /api/news/{id}
func (h *CatalogHandler) GetNews(e *core.RequestEvent) error {
	n, err := h.catalog.GetNews(e.Request.PathValue("id"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, n)
}

// POST /api/news
func (h *CatalogHandler) CreateNews(e *core.RequestEvent) error {
	var n models.News
	if err := e.BindBody(&n); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	n.ID = ""
	if err := h.catalog.CreateNews(e.Request.Context(), &n); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, n)
}

// PUT /api/news/{id}
func (h *CatalogHandler) UpdateNews(e *core.RequestEvent) error {
	var n models.News
	if err := e.BindBody(&n); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	n.ID = e.Request.PathValue("id")
	if err := h.catalog.UpdateNews(e.Request.Context(), &n); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, n)
}

// DELETE /api/news/{id}
func (h *CatalogHandler) DeleteNews(e *core.RequestEvent) error {
	if err := h.catalog.DeleteNews(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return apiError(err)
	}
	return e.NoContent(http.StatusNoContent)
}

// ListPerformances lists every performance by date, or one volume with
// ?volume=.
// GET /api/performances
func (h *CatalogHandler) ListPerformances(e *core.RequestEvent) error {
	if volume := e.Request.URL.Query().Get("volume"); volume != "" {
		return h.performances(e)(h.catalog.PerformancesByVolume(volume))
	}
	return h.performances(e)(h.catalog.ListPerformances())
}

// GET /api/performances/on-sale
func (h *CatalogHandler) OnSale(e *core.RequestEvent) error {
	return h.performances(e)(h.catalog.OnSale())
}

// GET /api/performances/upcoming
func (h *CatalogHandler) Upcoming(e *core.RequestEvent) error {
	return h.performances(e)(h.catalog.Upcoming())
}

func (h *CatalogHandler) performances(e *core.RequestEvent) func([]*models.Performance, error) error {
	return func(list []*models.Performance, err error) error {
		if err != nil {
			return apiError(err)
		}
		return e.JSON(http.StatusOK, list)
	}
}

// GET /api/performances/{id}
func (h *CatalogHandler) GetPerformance(e *core.RequestEvent) error {
	p, err := h.catalog.GetPerformance(e.Request.PathValue("id"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, p)
}

// GET /api/performances/{id}/availability
func (h *CatalogHandler) Availability(e *core.RequestEvent) error {
	a, err := h.catalog.Availability(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, a)
}

// POST /api/performances
func (h *CatalogHandler) CreatePerformance(e *core.RequestEvent) error {
	var p models.Performance
	if err := e.BindBody(&p); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	p.ID = ""
	if err := h.catalog.CreatePerformance(e.Request.Context(), &p); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, p)
}

// UpdatePerformance replaces the editable fields. Sold counters are kept
// from the stored record.
// PUT /api/performances/{id}
func (h *CatalogHandler) UpdatePerformance(e *core.RequestEvent) error {
	current, err := h.catalog.GetPerformance(e.Request.PathValue("id"))
	if err != nil {
		return apiError(err)
	}

	var p models.Performance
	if err := e.BindBody(&p); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	p.ID = current.ID
	p.GeneralSold = current.GeneralSold
	p.ReservedSold = current.ReservedSold
	p.CreatedAt = current.CreatedAt

	if err := h.catalog.UpdatePerformance(e.Request.Context(), &p); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, p)
}

// PUT /api/performances/{id}/sale-status
func (h *CatalogHandler) UpdateSaleStatus(e *core.RequestEvent) error {
	var req struct {
		SaleStatus string `json:"saleStatus"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	p, err := h.catalog.UpdateSaleStatus(e.Request.Context(), e.Request.PathValue("id"), req.SaleStatus)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, p)
}

// DELETE /api/performances/{id}
func (h *CatalogHandler) DeletePerformance(e *core.RequestEvent) error {
	if err := h.catalog.DeletePerformance(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return apiError(err)
	}
	return e.NoContent(http.StatusNoContent)
}
