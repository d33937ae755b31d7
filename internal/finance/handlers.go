package finance

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/common"
)

// Handler exposes finance document and operational cost endpoints.
type Handler struct {
	Service *Service
}

func kindFromRequest(r *http.Request) (string, bool) {
	kind, ok := KindFromPath[chi.URLParam(r, "kind")]
	return kind, ok
}

// List handles GET /api/v1/finance/{kind}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(r)
	if !ok {
		common.WriteError(w, common.NotFound("unknown document kind"))
		return
	}
	q := r.URL.Query()
	params := ListParams{
		Kind:   kind,
		Status: strings.TrimSpace(q.Get("status")),
		Page:   common.AtoiDefault(q.Get("page"), 1),
		Limit:  common.AtoiDefault(q.Get("limit"), h.Service.defaultLimit),
	}
	if raw := strings.TrimSpace(q.Get("bookingId")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.WriteError(w, common.Validation("invalid bookingId filter", nil))
			return
		}
		params.BookingID = &id
	}
	docs, total, err := h.Service.List(r.Context(), params)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if docs == nil {
		docs = []Document{}
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       docs,
		"pagination": common.Pagination{Page: params.Page, PerPage: params.Limit, TotalItems: int(total)},
	})
}

// Create handles POST /api/v1/finance/{kind}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindFromRequest(r)
	if !ok {
		common.WriteError(w, common.NotFound("unknown document kind"))
		return
	}
	var req DocumentRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	doc, err := h.Service.Create(r.Context(), kind, req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": doc})
}

// Get handles GET /api/v1/finance/{kind}/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := kindFromRequest(r); !ok {
		common.WriteError(w, common.NotFound("unknown document kind"))
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	doc, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": doc})
}

// MarkPaid handles POST /api/v1/finance/invoices/{id}/paid.
func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	if err := h.Service.MarkPaid(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": map[string]string{"status": StatusPaid}})
}

// CheckOverdue handles POST /api/v1/finance/invoices/{id}/overdue-check.
func (h *Handler) CheckOverdue(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	doc, err := h.Service.CheckOverdue(r.Context(), id, time.Now().UTC())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": doc})
}

// ListOpCosts handles GET /api/v1/operational-costs.
func (h *Handler) ListOpCosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var bookingID, spaceID *uuid.UUID
	for key, dst := range map[string]**uuid.UUID{"bookingId": &bookingID, "spaceId": &spaceID} {
		if raw := strings.TrimSpace(q.Get(key)); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				common.WriteError(w, common.Validation("invalid "+key+" filter", nil))
				return
			}
			*dst = &id
		}
	}
	page := common.AtoiDefault(q.Get("page"), 1)
	limit := common.AtoiDefault(q.Get("limit"), h.Service.defaultLimit)
	costs, total, err := h.Service.ListOpCosts(r.Context(), bookingID, spaceID, page, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if costs == nil {
		costs = []OperationalCost{}
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       costs,
		"pagination": common.Pagination{Page: page, PerPage: limit, TotalItems: int(total)},
	})
}

// CreateOpCost handles POST /api/v1/operational-costs.
func (h *Handler) CreateOpCost(w http.ResponseWriter, r *http.Request) {
	var req OpCostRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	c, err := h.Service.CreateOpCost(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": c})
}

// Routes mounts the finance document endpoints under /finance.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/invoices/{id}/paid", h.MarkPaid)
	r.Post("/invoices/{id}/overdue-check", h.CheckOverdue)
	r.Get("/{kind}", h.List)
	r.Post("/{kind}", h.Create)
	r.Get("/{kind}/{id}", h.Get)
}

// OpCostRoutes mounts the operational cost endpoints under /operational-costs.
func (h *Handler) OpCostRoutes(r chi.Router) {
	r.Get("/", h.ListOpCosts)
	r.Post("/", h.CreateOpCost)
}
