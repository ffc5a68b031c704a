// Package masterdata exposes the supporting catalogues over HTTP.
package masterdata

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zecadelgado/patp/internal/masterdata/categories"
	"github.com/zecadelgado/patp/internal/masterdata/sectors"
	"github.com/zecadelgado/patp/internal/masterdata/shared"
	"github.com/zecadelgado/patp/internal/masterdata/suppliers"
	"github.com/zecadelgado/patp/internal/platform/httpx"
)

type Handler struct {
	logger     *slog.Logger
	categories *categories.Service
	sectors    *sectors.Service
	suppliers  *suppliers.Service
}

func NewHandler(
	logger *slog.Logger,
	categoriesSvc *categories.Service,
	sectorsSvc *sectors.Service,
	suppliersSvc *suppliers.Service,
) *Handler {
	return &Handler{
		logger:     logger,
		categories: categoriesSvc,
		sectors:    sectorsSvc,
		suppliers:  suppliersSvc,
	}
}

func (h *Handler) Mount(r chi.Router) {
	r.Route("/masterdata", func(r chi.Router) {
		r.Get("/categories", h.listCategories)
		r.Post("/categories", h.createCategory)
		r.Get("/sectors", h.listSectors)
		r.Post("/sectors", h.createSector)
		r.Put("/sectors/{id}", h.updateSector)
		r.Get("/suppliers", h.listSuppliers)
		r.Post("/suppliers", h.createSupplier)
		r.Put("/suppliers/{id}", h.updateSupplier)
	})
}

func listFilters(r *http.Request) shared.ListFilters {
	return shared.ListFilters{Search: r.URL.Query().Get("search")}
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	out, err := h.categories.List(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	c, err := h.categories.Create(r.Context(), req.Name)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, c)
}

func (h *Handler) listSectors(w http.ResponseWriter, r *http.Request) {
	out, err := h.sectors.List(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sectors": out})
}

func (h *Handler) createSector(w http.ResponseWriter, r *http.Request) {
	var req sectors.Sector
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	s, err := h.sectors.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *Handler) updateSector(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req sectors.Sector
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.sectors.Update(r.Context(), id, req); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	out, err := h.suppliers.List(r.Context(), listFilters(r))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"suppliers": out})
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req suppliers.Supplier
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	s, err := h.suppliers.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, s)
}

func (h *Handler) updateSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req suppliers.Supplier
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Body", "malformed JSON body")
		return
	}
	if err := h.suppliers.Update(r.Context(), id, req); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"updated": true})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrDuplicate):
		httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, shared.ErrInUse):
		httpx.Problem(w, http.StatusConflict, "In Use", err.Error())
	default:
		h.logger.Error("masterdata operation failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
