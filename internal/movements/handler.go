package movements

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

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
	r.Get("/movements", h.History)
	r.Get("/movements/export", h.Export)
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	filters, err := parseHistoryFilters(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filters", err.Error())
		return
	}

	history, total, err := h.service.History(r.Context(), filters)
	if err != nil {
		h.logger.Error("list movements failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"movements": history,
		"total":     total,
	})
}

func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	filters, err := parseHistoryFilters(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Filters", err.Error())
		return
	}
	// Exports are unpaginated.
	filters.Limit = 0
	filters.Offset = 0

	history, _, err := h.service.History(r.Context(), filters)
	if err != nil {
		h.logger.Error("export movements failed", "error", err)
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)
	if err := WriteCSV(w, history); err != nil {
		h.logger.Error("write movements csv failed", "error", err)
	}
}

func parseHistoryFilters(r *http.Request) (HistoryFilters, error) {
	q := r.URL.Query()
	filters := HistoryFilters{
		Kind:   q.Get("kind"),
		Limit:  50,
		Offset: 0,
	}

	if raw := q.Get("asset_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return HistoryFilters{}, errInvalidParam("asset_id")
		}
		filters.AssetID = id
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return HistoryFilters{}, errInvalidParam("from")
		}
		filters.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return HistoryFilters{}, errInvalidParam("to")
		}
		// Inclusive upper bound covering the whole day.
		filters.To = t.AddDate(0, 0, 1).Add(-time.Second)
	}
	if raw := q.Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			filters.Limit = parsed
		}
	}
	if raw := q.Get("offset"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			filters.Offset = parsed
		}
	}
	return filters, nil
}

type errInvalidParam string

func (e errInvalidParam) Error() string { return "invalid value for " + string(e) }
