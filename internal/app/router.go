package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/zecadelgado/patp/internal/assets"
	"github.com/zecadelgado/patp/internal/masterdata"
	"github.com/zecadelgado/patp/internal/movements"
	"github.com/zecadelgado/patp/internal/reports"
	"github.com/zecadelgado/patp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AssetHandler      *assets.Handler
	MovementHandler   *movements.Handler
	MasterDataHandler *masterdata.Handler
	ReportHandler     *reports.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with the service defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.AssetHandler != nil {
		params.AssetHandler.Mount(r)
	}
	if params.MovementHandler != nil {
		params.MovementHandler.Mount(r)
	}
	if params.MasterDataHandler != nil {
		params.MasterDataHandler.Mount(r)
	}
	if params.ReportHandler != nil {
		params.ReportHandler.Mount(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", func(jr chi.Router) {
			params.JobHandler.MountRoutes(jr)
		})
	}

	return r
}
