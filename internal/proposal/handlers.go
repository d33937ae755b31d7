package proposal

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/booking"
	"github.com/noah-isme/backend-ooh/internal/common"
)

// Handler exposes the proposal endpoints.
type Handler struct {
	Service *Service
}

// List handles GET /api/v1/proposals.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListParams{
		Query:  strings.TrimSpace(q.Get("q")),
		Status: strings.TrimSpace(q.Get("status")),
		Page:   common.AtoiDefault(q.Get("page"), 1),
		Limit:  common.AtoiDefault(q.Get("limit"), h.Service.defaultLimit),
	}
	proposals, total, err := h.Service.List(r.Context(), params)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if proposals == nil {
		proposals = []Proposal{}
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       proposals,
		"pagination": common.Pagination{Page: params.Page, PerPage: params.Limit, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/proposals/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// Create handles POST /api/v1/proposals.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.Service.Create(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": p})
}

// Update handles PUT /api/v1/proposals/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	var req Request
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// EditItemPrice handles POST /api/v1/proposals/{id}/items/{itemId}/price.
func (h *Handler) EditItemPrice(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid item id", nil))
		return
	}
	var form booking.PriceUpdate
	if err := common.DecodeJSON(r, &form); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.Service.EditItemPrice(r.Context(), id, itemID, form)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// SetStatus handles POST /api/v1/proposals/{id}/status.
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	var req StatusRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.SetStatus(r.Context(), id, req); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"status": req.Status}})
}

// Convert handles POST /api/v1/proposals/{id}/convert.
func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	b, err := h.Service.Convert(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": b})
}

// Routes mounts the proposal endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Post("/{id}/items/{itemId}/price", h.EditItemPrice)
	r.Post("/{id}/status", h.SetStatus)
	r.Post("/{id}/convert", h.Convert)
}
