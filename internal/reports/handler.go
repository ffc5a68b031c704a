package reports

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/zecadelgado/patp/internal/assets"
	"github.com/zecadelgado/patp/internal/depreciation"
	"github.com/zecadelgado/patp/internal/platform/httpx"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Mount(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", h.dashboard)
		r.Get("/by-sector", h.bySector)
		r.Get("/by-category", h.byCategory)
		r.Get("/depreciation", h.depreciation)
		r.Get("/depreciation/{id}", h.schedule)
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("dashboard report failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) depreciation(w http.ResponseWriter, r *http.Request) {
	filters := DepreciationFilters{Text: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("category_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Filter", "category_id must be a positive integer")
			return
		}
		filters.CategoryID = id
	}

	rows, err := h.service.Depreciation(r.Context(), filters)
	if err != nil {
		h.logger.Error("depreciation report failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="report-depreciation.csv"`)
		if err := WriteDepreciationCSV(w, rows); err != nil {
			h.logger.Error("write report csv failed", "error", err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) bySector(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.BySector(r.Context())
	if err != nil {
		h.logger.Error("sector report failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.respond(w, r, "sector", rows)
}

func (h *Handler) byCategory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.ByCategory(r.Context())
	if err != nil {
		h.logger.Error("category report failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	h.respond(w, r, "category", rows)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, groupLabel string, rows []SummaryRow) {
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="report-`+groupLabel+`.csv"`)
		if err := WriteSummaryCSV(w, groupLabel, rows); err != nil {
			h.logger.Error("write report csv failed", "error", err)
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid ID", "asset id must be a positive integer")
		return
	}

	entries, err := h.service.Schedule(r.Context(), id)
	switch {
	case errors.Is(err, assets.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	case errors.Is(err, depreciation.ErrInvalidAcquisitionDate):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Acquisition Date", err.Error())
		return
	case err != nil:
		h.logger.Error("depreciation schedule failed", "error", err, "asset_id", id)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"schedule": entries})
}
