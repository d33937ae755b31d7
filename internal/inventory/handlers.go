package inventory

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-ooh/internal/common"
)

// Handler exposes the media space endpoints.
type Handler struct {
	Service *Service
}

// List handles GET /api/v1/spaces with filters and pagination.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params, err := ParseListParams(r.URL.Query(), h.Service.defaultLimit, h.Service.maxLimit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	spaces, total, err := h.Service.List(r.Context(), params)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if spaces == nil {
		spaces = []SpaceDetail{}
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	common.JSON(w, http.StatusOK, map[string]any{
		"data":       spaces,
		"pagination": common.Pagination{Page: params.Page, PerPage: params.Limit, TotalItems: int(total)},
	})
}

// Get handles GET /api/v1/spaces/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	detail, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

// Create handles POST /api/v1/spaces.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req SpaceRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	detail, err := h.Service.Create(r.Context(), req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": detail})
}

// Update handles PUT /api/v1/spaces/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.WriteError(w, common.Validation("invalid id", nil))
		return
	}
	var req SpaceRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	detail, err := h.Service.Update(r.Context(), id, req)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": detail})
}

// Delete handles DELETE /api/v1/spaces/{id}.
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

// Routes mounts the space endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}
