package masters

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/common"
)

// Handler exposes master data endpoints.
type Handler struct {
	Service *Service
}

type itemRequest struct {
	Name     string     `json:"name"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}

// List handles GET /api/v1/masters/{kind}.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Service.List(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if items == nil {
		items = []Item{}
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": items})
}

// Create handles POST /api/v1/masters/{kind}.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	item, err := h.Service.Create(r.Context(), chi.URLParam(r, "kind"), req.Name, req.ParentID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": item})
}

// Update handles PUT /api/v1/masters/{kind}/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	var req itemRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	item, err := h.Service.Rename(r.Context(), id, req.Name)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": item})
}

// Delete handles DELETE /api/v1/masters/{kind}/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Routes mounts the master data endpoints on the given router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/{kind}", h.List)
	r.Post("/{kind}", h.Create)
	r.Put("/{kind}/{id}", h.Update)
	r.Delete("/{kind}/{id}", h.Delete)
}
