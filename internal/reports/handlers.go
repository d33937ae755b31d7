package reports

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-ooh/internal/common"
)

type storeProvider interface {
	MonthlyRevenue(ctx context.Context, year int) ([]RevenuePoint, error)
	StatusCounts(ctx context.Context) ([]StatusCount, error)
	TopSpaces(ctx context.Context, limit int) ([]TopSpace, error)
}

const maxTopSpaces = 50

// Handler exposes the dashboard report endpoints.
type Handler struct {
	Store storeProvider
}

// Revenue handles GET /api/v1/reports/revenue?year=2026.
func (h *Handler) Revenue(w http.ResponseWriter, r *http.Request) {
	year := common.AtoiDefault(r.URL.Query().Get("year"), time.Now().UTC().Year())
	if year < 2000 || year > 2200 {
		common.WriteError(w, common.Validation("year out of range", nil))
		return
	}
	points, err := h.Store.MonthlyRevenue(r.Context(), year)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if points == nil {
		points = []RevenuePoint{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": points})
}

// Status handles GET /api/v1/reports/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	counts, err := h.Store.StatusCounts(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if counts == nil {
		counts = []StatusCount{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": counts})
}

// TopSpaces handles GET /api/v1/reports/top-spaces?limit=10.
func (h *Handler) TopSpaces(w http.ResponseWriter, r *http.Request) {
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 10)
	if limit < 1 {
		limit = 10
	}
	if limit > maxTopSpaces {
		limit = maxTopSpaces
	}
	spaces, err := h.Store.TopSpaces(r.Context(), limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if spaces == nil {
		spaces = []TopSpace{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": spaces})
}

// Routes mounts the report endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/revenue", h.Revenue)
	r.Get("/status", h.Status)
	r.Get("/top-spaces", h.TopSpaces)
}
